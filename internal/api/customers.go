package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"oticapos/m/domain"
)

type customerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	CPF       string `json:"cpf,omitempty"`
	Phone     string `json:"phone,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
	Address   string `json:"address,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// customerPatch only touches fields that are present in the request body;
// absent fields stay as they are.
type customerPatch struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	CPF       *string `json:"cpf,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
	Address   *string `json:"address,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	now := nowUTC()
	res, err := h.db.Exec(`INSERT INTO customers (name, email, cpf, phone, birth_date, address, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(req.Name), normalizeEmail(req.Email), nullIfEmpty(req.CPF), nullIfEmpty(req.Phone),
		nullIfEmpty(req.BirthDate), nullIfEmpty(req.Address), nullIfEmpty(req.Notes), now, now)
	if err != nil {
		if field, ok := uniqueViolation(err); ok {
			respondError(w, http.StatusConflict, field+" already in use")
		} else {
			respondError(w, http.StatusInternalServerError, "unable to create customer")
		}
		return
	}
	id, _ := res.LastInsertId()

	var customer domain.Customer
	if err := h.db.Get(&customer, `SELECT * FROM customers WHERE id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load customer")
		return
	}
	respondJSON(w, http.StatusCreated, customer)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	customers := []domain.Customer{}
	var err error
	if query == "" {
		err = h.db.Select(&customers, `SELECT * FROM customers ORDER BY name`)
	} else {
		like := "%" + query + "%"
		err = h.db.Select(&customers, `SELECT * FROM customers WHERE name LIKE ? OR email LIKE ? OR cpf LIKE ? ORDER BY name`, like, like, like)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list customers")
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	var customer domain.Customer
	if err := h.db.Get(&customer, `SELECT * FROM customers WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "customer not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load customer")
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	var customer domain.Customer
	if err := h.db.Get(&customer, `SELECT * FROM customers WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "customer not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load customer")
		return
	}

	var patch customerPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			respondError(w, http.StatusBadRequest, "name cannot be blank")
			return
		}
		customer.Name = name
	}
	if patch.Email != nil {
		customer.Email = normalizeEmail(*patch.Email)
	}
	if patch.CPF != nil {
		customer.CPF = nullIfEmpty(*patch.CPF)
	}
	if patch.Phone != nil {
		customer.Phone = nullIfEmpty(*patch.Phone)
	}
	if patch.BirthDate != nil {
		customer.BirthDate = nullIfEmpty(*patch.BirthDate)
	}
	if patch.Address != nil {
		customer.Address = nullIfEmpty(*patch.Address)
	}
	if patch.Notes != nil {
		customer.Notes = nullIfEmpty(*patch.Notes)
	}
	customer.UpdatedAt = nowUTC()

	_, err = h.db.Exec(`UPDATE customers SET name = ?, email = ?, cpf = ?, phone = ?, birth_date = ?, address = ?, notes = ?, updated_at = ? WHERE id = ?`,
		customer.Name, customer.Email, customer.CPF, customer.Phone, customer.BirthDate, customer.Address, customer.Notes, customer.UpdatedAt, id)
	if err != nil {
		if field, ok := uniqueViolation(err); ok {
			respondError(w, http.StatusConflict, field+" already in use")
		} else {
			respondError(w, http.StatusInternalServerError, "unable to update customer")
		}
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

// deleteCustomer cascades the customer's prescriptions but refuses to touch
// recorded sales or appointments; those block the deletion.
func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	var exists bool
	if err := h.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM customers WHERE id = ?)`, id); err != nil || !exists {
		respondError(w, http.StatusNotFound, "customer not found")
		return
	}

	var hasSales bool
	if err := h.db.Get(&hasSales, `SELECT EXISTS(SELECT 1 FROM sales WHERE customer_id = ?)`, id); err == nil && hasSales {
		respondError(w, http.StatusConflict, "customer has recorded sales")
		return
	}
	var hasAppointments bool
	if err := h.db.Get(&hasAppointments, `SELECT EXISTS(SELECT 1 FROM appointments WHERE customer_id = ?)`, id); err == nil && hasAppointments {
		respondError(w, http.StatusConflict, "customer has appointments")
		return
	}

	if _, err := h.db.Exec(`DELETE FROM customers WHERE id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete customer")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func normalizeEmail(email string) *string {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
