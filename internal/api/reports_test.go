package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type reportResp struct {
	Sales            []saleResp `json:"sales"`
	TotalRevenue     float64    `json:"total_revenue"`
	TotalUnitsSold   int64      `json:"total_units_sold"`
	ProductBreakdown []struct {
		ProductID   int64   `json:"product_id"`
		ProductName string  `json:"product_name"`
		UnitsSold   int64   `json:"units_sold"`
		Revenue     float64 `json:"revenue"`
	} `json:"product_breakdown"`
	Appointments []struct {
		ID           int64  `json:"id"`
		CustomerName string `json:"customer_name"`
		Date         string `json:"date"`
		Type         string `json:"type"`
		Status       string `json:"status"`
	} `json:"appointments"`
	AppointmentsByType   map[string]int64 `json:"appointments_by_type"`
	AppointmentsByStatus map[string]int64 `json:"appointments_by_status"`
}

func (e *testEnv) backdateSale(id int64, createdAt string) {
	e.t.Helper()
	_, err := e.db.Exec(`UPDATE sales SET created_at = ? WHERE id = ?`, createdAt, id)
	require.NoError(e.t, err)
}

func (e *testEnv) makeSale(customerID, productID, quantity int64) int64 {
	e.t.Helper()
	w := e.doAdmin(http.MethodPost, "/sales", saleBody(customerID, saleItemBody{ProductID: productID, Quantity: quantity}))
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var sale saleResp
	e.decode(w, &sale)
	return sale.ID
}

func TestPeriodReportValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.doAdmin(http.MethodGet, "/reports", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doAdmin(http.MethodGet, "/reports?startDate=2026-03-01&endDate=03/05/2026", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doAdmin(http.MethodGet, "/reports?startDate=2026-03-10&endDate=2026-03-01", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPeriodReportBoundaries(t *testing.T) {
	env := newTestEnv(t)
	customerID := env.createCustomer("Boundary")
	productID := env.createProduct("Frame R", 100, 10.0)

	atStart := env.makeSale(customerID, productID, 1)
	env.backdateSale(atStart, "2026-03-01T00:00:00Z")
	atEnd := env.makeSale(customerID, productID, 2)
	env.backdateSale(atEnd, "2026-03-05T23:59:59Z")
	before := env.makeSale(customerID, productID, 4)
	env.backdateSale(before, "2026-02-28T23:59:59Z")

	w := env.doAdmin(http.MethodGet, "/reports?startDate=2026-03-01&endDate=2026-03-05", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report reportResp
	env.decode(w, &report)

	require.Len(t, report.Sales, 2)
	// Ascending by date: the start-of-range sale first.
	require.Equal(t, atStart, report.Sales[0].ID)
	require.Equal(t, atEnd, report.Sales[1].ID)
	require.Equal(t, 30.0, report.TotalRevenue)
	require.Equal(t, int64(3), report.TotalUnitsSold)
}

func TestPeriodReportAggregation(t *testing.T) {
	env := newTestEnv(t)
	c1 := env.createCustomer("Relatorio Um")
	c2 := env.createCustomer("Relatorio Dois")
	frames := env.createProduct("Frame S", 100, 100.0)
	lenses := env.createProduct("Lens T", 100, 40.0)

	w := env.doAdmin(http.MethodPost, "/sales", saleBody(c1,
		saleItemBody{ProductID: frames, Quantity: 1},
		saleItemBody{ProductID: lenses, Quantity: 4},
	))
	require.Equal(t, http.StatusCreated, w.Code)
	var s1 saleResp
	env.decode(w, &s1)
	env.backdateSale(s1.ID, "2026-03-02T10:00:00Z")

	s2 := env.makeSale(c2, frames, 2)
	env.backdateSale(s2, "2026-03-03T15:30:00Z")

	for _, appointment := range []map[string]any{
		{"customer_id": c1, "date": "2026-03-02", "time": "09:00", "type": "eye_exam"},
		{"customer_id": c2, "date": "2026-03-04", "time": "14:00", "type": "fitting", "status": "completed"},
		{"customer_id": c1, "date": "2026-04-10", "time": "09:00", "type": "eye_exam"},
	} {
		w := env.doAdmin(http.MethodPost, "/appointments", appointment)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = env.doAdmin(http.MethodGet, "/reports?startDate=2026-03-01&endDate=2026-03-31", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report reportResp
	env.decode(w, &report)

	require.Len(t, report.Sales, 2)
	require.Equal(t, "Relatorio Um", report.Sales[0].CustomerName)
	require.Equal(t, 260.0, report.TotalRevenue) // (1*100 + 4*40) + 2*100
	require.Equal(t, int64(7), report.TotalUnitsSold)

	require.Len(t, report.ProductBreakdown, 2)
	// Sorted by units sold, descending.
	require.Equal(t, "Lens T", report.ProductBreakdown[0].ProductName)
	require.Equal(t, int64(4), report.ProductBreakdown[0].UnitsSold)
	require.Equal(t, 160.0, report.ProductBreakdown[0].Revenue)
	require.Equal(t, "Frame S", report.ProductBreakdown[1].ProductName)
	require.Equal(t, int64(3), report.ProductBreakdown[1].UnitsSold)
	require.Equal(t, 300.0, report.ProductBreakdown[1].Revenue)

	require.Len(t, report.Appointments, 2)
	require.Equal(t, "2026-03-02", report.Appointments[0].Date)
	require.Equal(t, int64(1), report.AppointmentsByType["eye_exam"])
	require.Equal(t, int64(1), report.AppointmentsByType["fitting"])
	require.Equal(t, int64(1), report.AppointmentsByStatus["scheduled"])
	require.Equal(t, int64(1), report.AppointmentsByStatus["completed"])
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	customerID := env.createCustomer("Stats")
	env.createProduct("Low Stock", 2, 10.0)
	env.createProduct("Plenty", 50, 10.0)

	w := env.doAdmin(http.MethodPost, "/prescriptions", map[string]any{"customer_id": customerID})
	require.Equal(t, http.StatusCreated, w.Code)

	for _, status := range []string{"", "completed"} {
		body := map[string]any{"customer_id": customerID, "date": "2026-09-01", "time": "10:00", "type": "eye_exam"}
		if status != "" {
			body["status"] = status
		}
		w := env.doAdmin(http.MethodPost, "/appointments", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = env.doAdmin(http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Customers           int64 `json:"customers"`
		Prescriptions       int64 `json:"prescriptions"`
		PendingAppointments int64 `json:"pending_appointments"`
		LowStockProducts    int64 `json:"low_stock_products"`
	}
	env.decode(w, &stats)
	require.Equal(t, int64(1), stats.Customers)
	require.Equal(t, int64(1), stats.Prescriptions)
	require.Equal(t, int64(1), stats.PendingAppointments)
	require.Equal(t, int64(1), stats.LowStockProducts)
}
