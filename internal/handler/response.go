// Package handler implements the HTTP layer: request parsing, response
// encoding, and the mapping from service errors to status codes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hayato-dev/discussboard/internal/apperror"
)

// ErrorResponse is the error shape returned by every API endpoint:
//
//	{"error": "validation_error", "message": "username is required"}
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable error type
	Message string `json:"message"` // human-readable description
}

// writeJSON sends a JSON response with the given status code. Headers must be
// set before the first body write, hence the fixed order here.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent at this point; logging is all we can do.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError translates a service error into an HTTP response.
//
// The service layer returns apperror sentinels; errors.Is walks the wrap
// chain so services are free to add context with fmt.Errorf("%w"). Unknown
// errors become a generic 500 so internal details (SQL, file paths) never
// reach the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads the request body into dst and reports a 400 on malformed
// JSON. Returns false when the response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_json",
			Message: "request body must be valid JSON",
		})
		return false
	}
	return true
}
