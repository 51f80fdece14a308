package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"oticapos/m/domain"
)

type prescriptionRequest struct {
	CustomerID int64    `json:"customer_id"`
	IssueDate  string   `json:"issue_date,omitempty"`
	ODSphere   *float64 `json:"od_sphere,omitempty"`
	ODCylinder *float64 `json:"od_cylinder,omitempty"`
	ODAxis     *float64 `json:"od_axis,omitempty"`
	OSSphere   *float64 `json:"os_sphere,omitempty"`
	OSCylinder *float64 `json:"os_cylinder,omitempty"`
	OSAxis     *float64 `json:"os_axis,omitempty"`
	Addition   *float64 `json:"addition,omitempty"`
	PD         *float64 `json:"pd,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

type prescriptionPatch struct {
	IssueDate  *string  `json:"issue_date,omitempty"`
	ODSphere   *float64 `json:"od_sphere,omitempty"`
	ODCylinder *float64 `json:"od_cylinder,omitempty"`
	ODAxis     *float64 `json:"od_axis,omitempty"`
	OSSphere   *float64 `json:"os_sphere,omitempty"`
	OSCylinder *float64 `json:"os_cylinder,omitempty"`
	OSAxis     *float64 `json:"os_axis,omitempty"`
	Addition   *float64 `json:"addition,omitempty"`
	PD         *float64 `json:"pd,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
}

func (h *Handler) createPrescription(w http.ResponseWriter, r *http.Request) {
	var req prescriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.CustomerID <= 0 {
		respondError(w, http.StatusBadRequest, "customer_id is required")
		return
	}
	var exists bool
	if err := h.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM customers WHERE id = ?)`, req.CustomerID); err != nil || !exists {
		respondError(w, http.StatusNotFound, "customer not found")
		return
	}

	res, err := h.db.Exec(`INSERT INTO prescriptions
		(customer_id, issue_date, od_sphere, od_cylinder, od_axis, os_sphere, os_cylinder, os_axis, addition, pd, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.CustomerID, nullIfEmpty(req.IssueDate), req.ODSphere, req.ODCylinder, req.ODAxis,
		req.OSSphere, req.OSCylinder, req.OSAxis, req.Addition, req.PD, nullIfEmpty(req.Notes), nowUTC())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create prescription")
		return
	}
	id, _ := res.LastInsertId()

	var prescription domain.Prescription
	if err := h.db.Get(&prescription, `SELECT * FROM prescriptions WHERE id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load prescription")
		return
	}
	respondJSON(w, http.StatusCreated, prescription)
}

func (h *Handler) listPrescriptions(w http.ResponseWriter, r *http.Request) {
	prescriptions := []domain.Prescription{}
	var err error
	if raw := strings.TrimSpace(r.URL.Query().Get("customerId")); raw != "" {
		customerID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, "invalid customerId filter")
			return
		}
		err = h.db.Select(&prescriptions, `SELECT * FROM prescriptions WHERE customer_id = ? ORDER BY created_at DESC`, customerID)
	} else {
		err = h.db.Select(&prescriptions, `SELECT * FROM prescriptions ORDER BY created_at DESC`)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list prescriptions")
		return
	}
	respondJSON(w, http.StatusOK, prescriptions)
}

func (h *Handler) getPrescription(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid prescription id")
		return
	}
	var prescription domain.Prescription
	if err := h.db.Get(&prescription, `SELECT * FROM prescriptions WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "prescription not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load prescription")
		return
	}
	respondJSON(w, http.StatusOK, prescription)
}

func (h *Handler) updatePrescription(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid prescription id")
		return
	}
	var prescription domain.Prescription
	if err := h.db.Get(&prescription, `SELECT * FROM prescriptions WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "prescription not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load prescription")
		return
	}

	var patch prescriptionPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.IssueDate != nil {
		prescription.IssueDate = nullIfEmpty(*patch.IssueDate)
	}
	if patch.ODSphere != nil {
		prescription.ODSphere = patch.ODSphere
	}
	if patch.ODCylinder != nil {
		prescription.ODCylinder = patch.ODCylinder
	}
	if patch.ODAxis != nil {
		prescription.ODAxis = patch.ODAxis
	}
	if patch.OSSphere != nil {
		prescription.OSSphere = patch.OSSphere
	}
	if patch.OSCylinder != nil {
		prescription.OSCylinder = patch.OSCylinder
	}
	if patch.OSAxis != nil {
		prescription.OSAxis = patch.OSAxis
	}
	if patch.Addition != nil {
		prescription.Addition = patch.Addition
	}
	if patch.PD != nil {
		prescription.PD = patch.PD
	}
	if patch.Notes != nil {
		prescription.Notes = nullIfEmpty(*patch.Notes)
	}

	_, err = h.db.Exec(`UPDATE prescriptions SET issue_date = ?, od_sphere = ?, od_cylinder = ?, od_axis = ?,
		os_sphere = ?, os_cylinder = ?, os_axis = ?, addition = ?, pd = ?, notes = ? WHERE id = ?`,
		prescription.IssueDate, prescription.ODSphere, prescription.ODCylinder, prescription.ODAxis,
		prescription.OSSphere, prescription.OSCylinder, prescription.OSAxis,
		prescription.Addition, prescription.PD, prescription.Notes, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update prescription")
		return
	}
	respondJSON(w, http.StatusOK, prescription)
}

func (h *Handler) deletePrescription(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid prescription id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM prescriptions WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete prescription")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "prescription not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
