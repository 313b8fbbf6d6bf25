package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/campusshop/storefront/internal/domain"
)

// CreateEvent handles POST /events.
func (s *Server) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var body eventRequest
	if !decodeBody(w, r, &body) {
		return
	}
	created, err := s.events.Create(r.Context(), body.toDomain(uuid.Nil))
	if err != nil {
		s.writeError(w, r, err, "event")
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, eventToResponse(created))
}

// ListEvents handles GET /events.
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.events.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, "event")
		return
	}
	out := make([]EventResponse, len(events))
	for i, e := range events {
		out[i] = eventToResponse(e)
	}
	render.JSON(w, r, out)
}

// GetEvent handles GET /events/{eventID}.
func (s *Server) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	e, err := s.events.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "event")
		return
	}
	render.JSON(w, r, eventToResponse(e))
}

// GetEventBySlug handles GET /events/slug/{slug}, the storefront's entry point.
func (s *Server) GetEventBySlug(w http.ResponseWriter, r *http.Request) {
	e, err := s.events.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err, "event")
		return
	}
	render.JSON(w, r, eventToResponse(e))
}

// UpdateEvent handles PUT /events/{eventID}. The schema is replaced through
// its own endpoint; any schema in this body is ignored.
func (s *Server) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	var body eventRequest
	if !decodeBody(w, r, &body) {
		return
	}
	updated, err := s.events.Update(r.Context(), body.toDomain(id))
	if err != nil {
		s.writeError(w, r, err, "event")
		return
	}
	render.JSON(w, r, eventToResponse(updated))
}

// ReplaceSchema handles PUT /events/{eventID}/schema.
func (s *Server) ReplaceSchema(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	var body schemaRequest
	if !decodeBody(w, r, &body) {
		return
	}
	updated, err := s.events.ReplaceSchema(r.Context(), id, body.Schema)
	if err != nil {
		s.writeError(w, r, err, "event")
		return
	}
	render.JSON(w, r, eventToResponse(updated))
}

// ResolveVisibility handles POST /events/{eventID}/visibility. The
// storefront calls it as the shopper fills in the form.
func (s *Server) ResolveVisibility(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	var body answersRequest
	if !decodeBody(w, r, &body) {
		return
	}
	visible, err := s.events.VisibleFields(r.Context(), id, body.Answers)
	if err != nil {
		s.writeError(w, r, err, "event")
		return
	}
	render.JSON(w, r, VisibilityResponse{Visible: visible})
}

// ListEventProducts handles GET /events/{eventID}/products.
func (s *Server) ListEventProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	products, err := s.events.Products(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "event")
		return
	}
	out := make([]EventProductResponse, len(products))
	for i, p := range products {
		out[i] = eventProductToResponse(p)
	}
	render.JSON(w, r, out)
}

// AttachProduct handles PUT /events/{eventID}/products/{productID}.
func (s *Server) AttachProduct(w http.ResponseWriter, r *http.Request) {
	eventID, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	productID, ok := uuidParam(w, r, "productID")
	if !ok {
		return
	}
	var body attachProductRequest
	if !decodeBody(w, r, &body) {
		return
	}
	ep, err := s.events.AttachProduct(r.Context(), eventID, productID, body.DisplayName, body.PriceCents)
	if err != nil {
		s.writeError(w, r, err, "event or product")
		return
	}
	render.JSON(w, r, eventProductToResponse(ep))
}

// SetCapacity handles PUT /events/{eventID}/products/{productID}/capacity.
// An override whose value is null lifts the limit for that day.
func (s *Server) SetCapacity(w http.ResponseWriter, r *http.Request) {
	eventID, ok := uuidParam(w, r, "eventID")
	if !ok {
		return
	}
	productID, ok := uuidParam(w, r, "productID")
	if !ok {
		return
	}
	var body domain.DailyCapacityConfig
	if !decodeBody(w, r, &body) {
		return
	}
	ep, err := s.events.SetCapacity(r.Context(), eventID, productID, body)
	if err != nil {
		s.writeError(w, r, err, "event product")
		return
	}
	render.JSON(w, r, eventProductToResponse(ep))
}

// CreateProduct handles POST /products.
func (s *Server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var body productRequest
	if !decodeBody(w, r, &body) {
		return
	}
	created, err := s.events.CreateProduct(r.Context(), domain.Product{
		Name:       body.Name,
		PriceCents: body.PriceCents,
		Stock:      body.Stock,
	})
	if err != nil {
		s.writeError(w, r, err, "product")
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, productToResponse(created))
}

// ListProducts handles GET /products.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.events.ListProducts(r.Context())
	if err != nil {
		s.writeError(w, r, err, "product")
		return
	}
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = productToResponse(p)
	}
	render.JSON(w, r, out)
}
