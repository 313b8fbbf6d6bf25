package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// GetAvailability handles GET /events/{eventID}/availability.
// from and to are required YYYY-MM-DD dates; repeat ?product= to narrow the
// calendar to a cart.
func (s *Server) GetAvailability(w http.ResponseWriter, r *http.Request) {
	eventID, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	q := r.URL.Query()

	from, err := dateQuery(q, "from")
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	to, err := dateQuery(q, "to")
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}

	var productIDs []uuid.UUID
	for _, raw := range q["product"] {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(w, r, "invalid product: "+raw)
			return
		}
		productIDs = append(productIDs, id)
	}

	days, err := s.availability.Calendar(r.Context(), eventID, from.Time, to.Time, productIDs)
	if err != nil {
		s.writeError(w, r, err, "event")
		return
	}
	out := make([]DayResponse, len(days))
	for i, d := range days {
		out[i] = dayToResponse(d)
	}
	render.JSON(w, r, out)
}

// dateQuery binds a required YYYY-MM-DD query parameter.
func dateQuery(q url.Values, name string) (openapi_types.Date, error) {
	var d openapi_types.Date
	raw := q.Get(name)
	if raw == "" {
		return d, fmt.Errorf("query parameter %q is required", name)
	}
	if err := runtime.BindStringToObject(raw, &d); err != nil {
		return d, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return d, nil
}
