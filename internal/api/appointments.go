package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"oticapos/m/domain"
)

type appointmentRequest struct {
	CustomerID int64  `json:"customer_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Type       string `json:"type"`
	Status     string `json:"status,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type appointmentPatch struct {
	Date   *string `json:"date,omitempty"`
	Time   *string `json:"time,omitempty"`
	Type   *string `json:"type,omitempty"`
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.CustomerID <= 0 || req.Date == "" || req.Time == "" || strings.TrimSpace(req.Type) == "" {
		respondError(w, http.StatusBadRequest, "customer_id, date, time and type are required")
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		respondError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		respondError(w, http.StatusBadRequest, "time must be in HH:MM format")
		return
	}
	var exists bool
	if err := h.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM customers WHERE id = ?)`, req.CustomerID); err != nil || !exists {
		respondError(w, http.StatusNotFound, "customer not found")
		return
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = domain.AppointmentScheduled
	}

	res, err := h.db.Exec(`INSERT INTO appointments (customer_id, date, time, type, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.CustomerID, req.Date, req.Time, strings.TrimSpace(req.Type), status, nullIfEmpty(req.Notes), nowUTC())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create appointment")
		return
	}
	id, _ := res.LastInsertId()

	var appointment domain.Appointment
	if err := h.db.Get(&appointment, `SELECT * FROM appointments WHERE id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load appointment")
		return
	}
	respondJSON(w, http.StatusCreated, appointment)
}

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	var (
		clauses []string
		args    []any
	)
	if date := strings.TrimSpace(r.URL.Query().Get("date")); date != "" {
		clauses = append(clauses, "date = ?")
		args = append(args, date)
	}
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, status)
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("customerId")); raw != "" {
		customerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid customerId filter")
			return
		}
		clauses = append(clauses, "customer_id = ?")
		args = append(args, customerID)
	}

	sqlQuery := `SELECT * FROM appointments`
	if len(clauses) > 0 {
		sqlQuery += " WHERE " + strings.Join(clauses, " AND ")
	}
	sqlQuery += " ORDER BY date, time"

	appointments := []domain.Appointment{}
	if err := h.db.Select(&appointments, sqlQuery, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list appointments")
		return
	}
	respondJSON(w, http.StatusOK, appointments)
}

func (h *Handler) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	var appointment domain.Appointment
	if err := h.db.Get(&appointment, `SELECT * FROM appointments WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "appointment not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load appointment")
		return
	}
	respondJSON(w, http.StatusOK, appointment)
}

func (h *Handler) updateAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	var appointment domain.Appointment
	if err := h.db.Get(&appointment, `SELECT * FROM appointments WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "appointment not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load appointment")
		return
	}

	var patch appointmentPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Date != nil {
		if _, err := time.Parse("2006-01-02", *patch.Date); err != nil {
			respondError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
			return
		}
		appointment.Date = *patch.Date
	}
	if patch.Time != nil {
		if _, err := time.Parse("15:04", *patch.Time); err != nil {
			respondError(w, http.StatusBadRequest, "time must be in HH:MM format")
			return
		}
		appointment.Time = *patch.Time
	}
	if patch.Type != nil {
		appointmentType := strings.TrimSpace(*patch.Type)
		if appointmentType == "" {
			respondError(w, http.StatusBadRequest, "type cannot be blank")
			return
		}
		appointment.Type = appointmentType
	}
	if patch.Status != nil {
		status := strings.TrimSpace(*patch.Status)
		if status == "" {
			respondError(w, http.StatusBadRequest, "status cannot be blank")
			return
		}
		appointment.Status = status
	}
	if patch.Notes != nil {
		appointment.Notes = nullIfEmpty(*patch.Notes)
	}

	_, err = h.db.Exec(`UPDATE appointments SET date = ?, time = ?, type = ?, status = ?, notes = ? WHERE id = ?`,
		appointment.Date, appointment.Time, appointment.Type, appointment.Status, appointment.Notes, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update appointment")
		return
	}
	respondJSON(w, http.StatusOK, appointment)
}

func (h *Handler) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete appointment")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "appointment not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
