package httpapi

import (
	"encoding/json"
	"net/http"

	"llamad/internal/runtime"
	"llamad/internal/service"
	"llamad/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// statusForError maps well-known orchestrator errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case service.IsNotFound(err):
		return http.StatusNotFound
	case service.IsNoActiveModel(err):
		return http.StatusConflict
	case runtime.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	case service.IsAcquisitionFailed(err), service.IsActivationFailed(err):
		return http.StatusBadGateway
	case service.IsPersistenceFailed(err):
		return http.StatusInternalServerError
	default:
		if he, ok := err.(HTTPError); ok {
			return he.StatusCode()
		}
		return http.StatusInternalServerError
	}
}

// writeServiceError maps err to a status and writes the JSON payload.
func writeServiceError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusForError(err), err.Error())
}
