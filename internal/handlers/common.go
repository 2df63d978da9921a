package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/abuildsit/borrowlog/internal/store"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// httpStatus maps the store error taxonomy to HTTP status codes, so
// every handler reports failures the same way.
func httpStatus(err error) int {
	switch store.KindOf(err) {
	case store.NotFound:
		return http.StatusNotFound
	case store.Validation:
		return http.StatusBadRequest
	case store.Constraint:
		return http.StatusConflict
	case store.Permission:
		return http.StatusForbidden
	case store.Transport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondStoreError reports a failed store-backed operation.
func respondStoreError(w http.ResponseWriter, err error) {
	respondError(w, err.Error(), httpStatus(err))
}
