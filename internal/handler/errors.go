package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/backoffice/internal/domain"
)

// ErrorResponse is the envelope of every error reply.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable code plus a human-readable message.
// Details lists per-field problems for validation errors.
type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details []domain.FieldError `json:"details,omitempty"`
}

const internalMessage = "internal server error"

// writeJSON writes v as the JSON body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the message (e.g. "customer not found")
// because the handler is the layer that knows what was being looked up.
func notFoundBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: message}}
}

// conflictBody returns an ErrorResponse for a uniqueness or state conflict.
func conflictBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "conflict", Message: message}}
}

// validationBody returns an ErrorResponse for a domain validation failure,
// with field detail when the error carries it.
func validationBody(err error) ErrorResponse {
	body := ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: unwrapMessage(err)}}
	var fe domain.FieldErrors
	if errors.As(err, &fe) {
		body.Error.Details = fe
	}
	return body
}

// requestBody returns an ErrorResponse for a bad request rejected before
// reaching the service layer (e.g. missing or malformed body).
func requestBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: message}}
}

// unwrapMessage extracts the human-readable part from a wrapped validation error.
// e.g. "service.TagService.Create: validation error: name: is required" → "name: is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	const prefix = "validation error: "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

// errorMessages names the resource in 404 and 409 replies.
type errorMessages struct {
	notFound string
	conflict string
}

// respondError maps err onto the status taxonomy: validation 400, not found
// 404, conflict 409, anything else 500.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, msgs errorMessages) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, validationBody(err))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, notFoundBody(orDefault(msgs.notFound, "resource not found")))
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, conflictBody(orDefault(msgs.conflict, "resource already exists")))
	default:
		s.internalError(w, r, err)
	}
}

// internalError logs err and writes a 500. The message is passed through
// only outside production.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	msg := err.Error()
	if s.hideInternal {
		msg = internalMessage
	}
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{Code: "internal_error", Message: msg}})
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
