package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/campusshop/storefront/internal/capacity"
	"github.com/campusshop/storefront/internal/domain"
	"github.com/campusshop/storefront/internal/form"
	"github.com/campusshop/storefront/internal/queue"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
// Fields lists per-field validation failures; Capacity lists the products
// that cannot take the order on the chosen day.
type ErrorDetail struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Fields   []form.FieldError `json:"fields,omitempty"`
	Capacity []capacity.Error  `json:"capacity,omitempty"`
}

func writeErrorBody(w http.ResponseWriter, r *http.Request, status int, d ErrorDetail) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: d})
}

// notFound writes a 404. The caller supplies the message (e.g. "event not
// found") because the handler is the layer that knows what was looked up.
func notFound(w http.ResponseWriter, r *http.Request, message string) {
	writeErrorBody(w, r, http.StatusNotFound, ErrorDetail{Code: "not_found", Message: message})
}

// badRequest writes a 400 for a request rejected before reaching the
// service layer (malformed body, bad path or query parameter).
func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeErrorBody(w, r, http.StatusBadRequest, ErrorDetail{Code: "bad_request", Message: message})
}

// writeError maps a service error to its HTTP status. Unknown errors are
// logged and reported as 500 without leaking details.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, what string) {
	var (
		fieldErrs form.ValidationErrors
		capErrs   capacity.Errors
	)
	switch {
	case errors.As(err, &fieldErrs):
		writeErrorBody(w, r, http.StatusUnprocessableEntity, ErrorDetail{
			Code: "validation_error", Message: "submission is invalid", Fields: fieldErrs,
		})
	case errors.As(err, &capErrs):
		writeErrorBody(w, r, http.StatusConflict, ErrorDetail{
			Code: "capacity_unavailable", Message: capErrs.Error(), Capacity: capErrs,
		})
	case errors.Is(err, domain.ErrValidation):
		writeErrorBody(w, r, http.StatusUnprocessableEntity, ErrorDetail{Code: "validation_error", Message: unwrapMessage(err)})
	case errors.Is(err, domain.ErrNotFound):
		notFound(w, r, what+" not found")
	case errors.Is(err, domain.ErrInsufficientStock):
		writeErrorBody(w, r, http.StatusConflict, ErrorDetail{Code: "insufficient_stock", Message: unwrapMessage(err)})
	case errors.Is(err, domain.ErrCapacity):
		writeErrorBody(w, r, http.StatusConflict, ErrorDetail{Code: "capacity_unavailable", Message: unwrapMessage(err)})
	case errors.Is(err, domain.ErrConflict):
		writeErrorBody(w, r, http.StatusConflict, ErrorDetail{Code: "conflict", Message: what + " already exists"})
	case errors.Is(err, queue.ErrDisabled):
		writeErrorBody(w, r, http.StatusServiceUnavailable, ErrorDetail{Code: "unavailable", Message: "messaging is not configured"})
	default:
		s.log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErrorBody(w, r, http.StatusInternalServerError, ErrorDetail{Code: "internal_error", Message: "internal server error"})
	}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.EventService.Create: validation error: name is required" → "name is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []error{domain.ErrValidation, domain.ErrInsufficientStock, domain.ErrCapacity} {
		if _, after, ok := strings.Cut(msg, sentinel.Error()+": "); ok {
			return after
		}
	}
	return msg
}
