package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"oticapos/m/domain"
)

func TestHealthIsPublic(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/customers", "/products", "/sales", "/reports", "/stats"} {
		w := env.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := env.do(http.MethodGet, "/customers", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/auth/register", "", map[string]any{
		"username": "dup", "email": "admin@shop.test", "password": "x", "role": "staff",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodPost, "/auth/register", "", map[string]any{
		"username": "nobody", "email": "nobody@shop.test", "password": "x", "role": "manager",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/auth/login", "", map[string]any{
		"email": "admin@shop.test", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodPost, "/auth/login", "", map[string]any{
		"email": "admin@shop.test", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAppointmentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	customerID := env.createCustomer("Agenda")

	w := env.doAdmin(http.MethodPost, "/appointments", map[string]any{
		"customer_id": customerID, "date": "2026-09-01", "type": "eye_exam",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doAdmin(http.MethodPost, "/appointments", map[string]any{
		"customer_id": customerID, "date": "01/09/2026", "time": "10:00", "type": "eye_exam",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doAdmin(http.MethodPost, "/appointments", map[string]any{
		"customer_id": 9999, "date": "2026-09-01", "time": "10:00", "type": "eye_exam",
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.doAdmin(http.MethodPost, "/appointments", map[string]any{
		"customer_id": customerID, "date": "2026-09-01", "time": "10:00", "type": "eye_exam",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var appointment domain.Appointment
	env.decode(w, &appointment)
	require.Equal(t, "scheduled", appointment.Status)

	w = env.doAdmin(http.MethodPatch, fmt.Sprintf("/appointments/%d", appointment.ID), map[string]any{
		"status": "completed",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.doAdmin(http.MethodGet, "/appointments?status=completed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var appointments []domain.Appointment
	env.decode(w, &appointments)
	require.Len(t, appointments, 1)
	require.Equal(t, "2026-09-01", appointments[0].Date)

	w = env.doAdmin(http.MethodDelete, fmt.Sprintf("/appointments/%d", appointment.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.doAdmin(http.MethodDelete, fmt.Sprintf("/appointments/%d", appointment.ID), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPrescriptionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	customerID := env.createCustomer("Receita")

	w := env.doAdmin(http.MethodPost, "/prescriptions", map[string]any{
		"customer_id": 9999,
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.doAdmin(http.MethodPost, "/prescriptions", map[string]any{
		"customer_id": customerID, "od_sphere": -2.0, "os_sphere": -2.25, "pd": 62.0,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var prescription domain.Prescription
	env.decode(w, &prescription)

	w = env.doAdmin(http.MethodPatch, fmt.Sprintf("/prescriptions/%d", prescription.ID), map[string]any{
		"addition": 1.5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.doAdmin(http.MethodGet, fmt.Sprintf("/prescriptions/%d", prescription.ID), nil)
	var loaded domain.Prescription
	env.decode(w, &loaded)
	require.NotNil(t, loaded.Addition)
	require.Equal(t, 1.5, *loaded.Addition)
	// Untouched measurement survives the partial update.
	require.NotNil(t, loaded.ODSphere)
	require.Equal(t, -2.0, *loaded.ODSphere)

	w = env.doAdmin(http.MethodGet, fmt.Sprintf("/prescriptions?customerId=%d", customerID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var prescriptions []domain.Prescription
	env.decode(w, &prescriptions)
	require.Len(t, prescriptions, 1)

	w = env.doAdmin(http.MethodDelete, fmt.Sprintf("/prescriptions/%d", prescription.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.doAdmin(http.MethodDelete, fmt.Sprintf("/prescriptions/%d", prescription.ID), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
