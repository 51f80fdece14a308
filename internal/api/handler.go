package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db     *sqlx.DB
	secret string
}

// New constructs a Handler.
func New(db *sqlx.DB, secret string) *Handler {
	return &Handler{db: db, secret: secret}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Post("/reset-password", h.resetPassword)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/customers", func(r chi.Router) {
			r.Get("/", h.listCustomers)
			r.Post("/", h.createCustomer)
			r.Get("/{id}", h.getCustomer)
			r.Patch("/{id}", h.updateCustomer)
			r.Delete("/{id}", h.deleteCustomer)
		})

		pr.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Get("/{id}", h.getProduct)
			r.Patch("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})

		pr.Route("/prescriptions", func(r chi.Router) {
			r.Get("/", h.listPrescriptions)
			r.Post("/", h.createPrescription)
			r.Get("/{id}", h.getPrescription)
			r.Patch("/{id}", h.updatePrescription)
			r.Delete("/{id}", h.deletePrescription)
		})

		pr.Route("/appointments", func(r chi.Router) {
			r.Get("/", h.listAppointments)
			r.Post("/", h.createAppointment)
			r.Get("/{id}", h.getAppointment)
			r.Patch("/{id}", h.updateAppointment)
			r.Delete("/{id}", h.deleteAppointment)
		})

		pr.Route("/sales", func(r chi.Router) {
			r.Get("/", h.listSales)
			r.Post("/", h.createSale)
			r.Get("/{id}", h.getSale)
			r.Patch("/{id}", h.updateSale)
			r.Delete("/{id}", h.deleteSale)
		})

		pr.Get("/reports", h.periodReport)
		pr.Get("/stats", h.stats)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
