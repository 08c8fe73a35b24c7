package httpapi

import (
	"encoding/json"
	"net/http"

	"podd/internal/manager"
	"podd/internal/provider"
	"podd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}

// writeServiceError maps well-known manager and provider errors to HTTP
// status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case manager.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case manager.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case manager.IsInvalidTransition(err):
		writeJSONError(w, http.StatusConflict, err.Error())
	case manager.IsProvisioning(err), provider.IsAPIError(err):
		writeJSONError(w, http.StatusBadGateway, err.Error())
	default:
		if he, ok := err.(HTTPError); ok {
			writeJSONError(w, he.StatusCode(), he.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
