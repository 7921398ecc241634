package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response from the JSON endpoints has the same shape:
//
//	{"error": "not_found", "message": "schedule not found with id abc123"}
//
// so the toggle-button script always knows what fields to expect, whether
// the failure is a 400, 404, or 500.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/schedule-arranger/internal/apperror"
)

// ErrorResponse is the standard error format returned by all JSON endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable error type (e.g. "not_found")
	Message string `json:"message"` // human-readable description
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS: headers and status code must be set BEFORE writing
// the body — once Encode calls w.Write, the headers are on the wire and any
// later changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent — all we can do is log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code and
// sends it.
//
// This is the single place domain errors become HTTP. The service layer
// returns apperror kinds (ErrValidation, ErrNotFound, ...) with no knowledge
// of status codes; errors.Is walks the wrapped chain to classify them here.
//
// Note there is no forbidden → 404 translation in this switch: the service
// layer already collapses not-the-owner into the not-found kind before the
// error gets here (see apperror.NotFoundOrForbidden). ErrForbidden still maps
// to 403 for any future caller that wants the honest signal.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError

	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrBadRequest):
			status = http.StatusBadRequest
			errorType = "bad_request"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error — generic 500. NEVER expose the raw error to the client:
	// it might carry SQL fragments or file paths.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
