package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/campusshop/storefront/internal/form"
)

var validate = newValidator()

// newValidator reports struct fields by their JSON names so field errors
// line up with the request body the client sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeBody reads a JSON body into dst and runs its validate tags.
// It writes the error response itself and reports whether the handler
// should continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorBody(w, r, http.StatusRequestEntityTooLarge, ErrorDetail{
				Code: "too_large", Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			})
			return false
		}
		badRequest(w, r, "request body is not valid JSON: "+err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			badRequest(w, r, err.Error())
			return false
		}
		writeErrorBody(w, r, http.StatusUnprocessableEntity, ErrorDetail{
			Code: "validation_error", Message: "request is invalid", Fields: fieldErrors(verrs),
		})
		return false
	}
	return true
}

func fieldErrors(verrs validator.ValidationErrors) []form.FieldError {
	out := make([]form.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, form.FieldError{Field: fieldPath(fe), Message: tagMessage(fe)})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace:
// "placeOrderRequest.items[0].quantity" becomes "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "failed " + fe.Tag() + " check"
}

// uuidParam parses a chi path parameter as a UUID, writing a 400 when it
// is malformed.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		badRequest(w, r, fmt.Sprintf("invalid %s: %s", name, chi.URLParam(r, name)))
		return uuid.Nil, false
	}
	return id, true
}
