package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// Helpers shared by all handlers.

func nullIfEmpty(val string) *string {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// uniqueViolation extracts the offending column from a SQLite unique
// constraint error, e.g. "customers.email".
func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	const marker = "UNIQUE constraint failed: "
	msg := err.Error()
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return "", false
	}
	col := msg[idx+len(marker):]
	if end := strings.IndexAny(col, " (,"); end > 0 {
		col = col[:end]
	}
	if dot := strings.LastIndex(col, "."); dot >= 0 {
		col = col[dot+1:]
	}
	return col, true
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
