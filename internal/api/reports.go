package api

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

type reportAppointment struct {
	ID            int64   `db:"id" json:"id"`
	CustomerID    int64   `db:"customer_id" json:"customer_id"`
	CustomerName  string  `db:"customer_name" json:"customer_name"`
	CustomerPhone *string `db:"customer_phone" json:"customer_phone,omitempty"`
	Date          string  `db:"date" json:"date"`
	Time          string  `db:"time" json:"time"`
	Type          string  `db:"type" json:"type"`
	Status        string  `db:"status" json:"status"`
}

type productBreakdown struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	SKU         *string `json:"sku,omitempty"`
	UnitsSold   int64   `json:"units_sold"`
	Revenue     float64 `json:"revenue"`
}

type periodReportResponse struct {
	StartDate            string              `json:"start_date"`
	EndDate              string              `json:"end_date"`
	Sales                []saleEntry         `json:"sales"`
	TotalRevenue         float64             `json:"total_revenue"`
	TotalUnitsSold       int64               `json:"total_units_sold"`
	ProductBreakdown     []productBreakdown  `json:"product_breakdown"`
	Appointments         []reportAppointment `json:"appointments"`
	AppointmentsByType   map[string]int64    `json:"appointments_by_type"`
	AppointmentsByStatus map[string]int64    `json:"appointments_by_status"`
}

// periodReport aggregates sales and appointments over an inclusive
// calendar-day range. It is a pure read: load the rows, then group and sum
// in memory.
func (h *Handler) periodReport(w http.ResponseWriter, r *http.Request) {
	startDate := strings.TrimSpace(r.URL.Query().Get("startDate"))
	endDate := strings.TrimSpace(r.URL.Query().Get("endDate"))
	if startDate == "" || endDate == "" {
		respondError(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}
	if _, err := time.Parse("2006-01-02", startDate); err != nil {
		respondError(w, http.StatusBadRequest, "startDate must be in YYYY-MM-DD format")
		return
	}
	if _, err := time.Parse("2006-01-02", endDate); err != nil {
		respondError(w, http.StatusBadRequest, "endDate must be in YYYY-MM-DD format")
		return
	}
	if startDate > endDate {
		respondError(w, http.StatusBadRequest, "startDate must not be after endDate")
		return
	}

	sales := []saleEntry{}
	appointments := []reportAppointment{}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		return h.db.SelectContext(ctx, &sales, `SELECT s.id, s.customer_id, s.receipt_number, s.payment_status,
			s.payment_method, s.total_amount, s.notes, s.created_at, c.name AS customer_name
			FROM sales s JOIN customers c ON c.id = s.customer_id
			WHERE DATE(s.created_at) BETWEEN ? AND ?
			ORDER BY s.created_at ASC`, startDate, endDate)
	})
	g.Go(func() error {
		return h.db.SelectContext(ctx, &appointments, `SELECT a.id, a.customer_id, c.name AS customer_name,
			c.phone AS customer_phone, a.date, a.time, a.type, a.status
			FROM appointments a JOIN customers c ON c.id = a.customer_id
			WHERE a.date BETWEEN ? AND ?
			ORDER BY a.date ASC, a.time ASC`, startDate, endDate)
	})
	if err := g.Wait(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build report")
		return
	}
	if err := h.attachSaleItems(sales); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sale items")
		return
	}

	var totalRevenue float64
	var totalUnits int64
	perProduct := make(map[int64]*productBreakdown)
	for _, sale := range sales {
		totalRevenue += sale.TotalAmount
		for _, item := range sale.Items {
			totalUnits += item.Quantity
			entry, ok := perProduct[item.ProductID]
			if !ok {
				entry = &productBreakdown{ProductID: item.ProductID, ProductName: item.ProductName, SKU: item.SKU}
				perProduct[item.ProductID] = entry
			}
			entry.UnitsSold += item.Quantity
			entry.Revenue += item.Subtotal
		}
	}
	breakdown := make([]productBreakdown, 0, len(perProduct))
	for _, entry := range perProduct {
		breakdown = append(breakdown, *entry)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].UnitsSold != breakdown[j].UnitsSold {
			return breakdown[i].UnitsSold > breakdown[j].UnitsSold
		}
		if breakdown[i].Revenue != breakdown[j].Revenue {
			return breakdown[i].Revenue > breakdown[j].Revenue
		}
		return breakdown[i].ProductName < breakdown[j].ProductName
	})

	byType := make(map[string]int64)
	byStatus := make(map[string]int64)
	for _, appointment := range appointments {
		byType[appointment.Type]++
		byStatus[appointment.Status]++
	}

	respondJSON(w, http.StatusOK, periodReportResponse{
		StartDate:            startDate,
		EndDate:              endDate,
		Sales:                sales,
		TotalRevenue:         totalRevenue,
		TotalUnitsSold:       totalUnits,
		ProductBreakdown:     breakdown,
		Appointments:         appointments,
		AppointmentsByType:   byType,
		AppointmentsByStatus: byStatus,
	})
}

type statsResponse struct {
	Customers           int64 `db:"customers" json:"customers"`
	Prescriptions       int64 `db:"prescriptions" json:"prescriptions"`
	PendingAppointments int64 `db:"pending_appointments" json:"pending_appointments"`
	LowStockProducts    int64 `db:"low_stock_products" json:"low_stock_products"`
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	var stats statsResponse
	err := h.db.Get(&stats, `SELECT
		(SELECT COUNT(*) FROM customers) AS customers,
		(SELECT COUNT(*) FROM prescriptions) AS prescriptions,
		(SELECT COUNT(*) FROM appointments WHERE status = 'scheduled') AS pending_appointments,
		(SELECT COUNT(*) FROM products WHERE stock_quantity < 5) AS low_stock_products`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
