package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/campusshop/storefront/internal/capacity"
	"github.com/campusshop/storefront/internal/domain"
)

// --- requests ---------------------------------------------------------------

type eventRequest struct {
	Slug        string              `json:"slug"`
	Name        string              `json:"name" validate:"required"`
	Description string              `json:"description"`
	Active      bool                `json:"active"`
	StartsOn    *openapi_types.Date `json:"startsOn"`
	EndsOn      *openapi_types.Date `json:"endsOn"`
	Schema      domain.Schema       `json:"schema"`
}

type schemaRequest struct {
	Schema domain.Schema `json:"schema" validate:"required"`
}

type answersRequest struct {
	Answers domain.Answers `json:"answers" validate:"required"`
}

type productRequest struct {
	Name       string `json:"name" validate:"required"`
	PriceCents int64  `json:"priceCents" validate:"gte=0"`
	Stock      *int   `json:"stock" validate:"omitempty,gte=0"`
}

type attachProductRequest struct {
	DisplayName string `json:"displayName"`
	PriceCents  *int64 `json:"priceCents" validate:"omitempty,gte=0"`
}

type cartLineRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
}

type placeOrderRequest struct {
	CustomerName  string            `json:"customerName" validate:"required"`
	CustomerEmail string            `json:"customerEmail" validate:"required,email"`
	Answers       domain.Answers    `json:"answers"`
	Items         []cartLineRequest `json:"items" validate:"required,min=1,dive"`
}

type statusRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required"`
}

// --- responses --------------------------------------------------------------

// EventResponse is the JSON shape of an event.
type EventResponse struct {
	ID          uuid.UUID           `json:"id"`
	Slug        string              `json:"slug"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Active      bool                `json:"active"`
	StartsOn    *openapi_types.Date `json:"startsOn,omitempty"`
	EndsOn      *openapi_types.Date `json:"endsOn,omitempty"`
	Schema      domain.Schema       `json:"schema"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// ProductResponse is the JSON shape of a catalog product.
type ProductResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	Stock      *int      `json:"stock"`
}

// EventProductResponse is a product as offered inside an event.
type EventProductResponse struct {
	EventID     uuid.UUID                  `json:"eventId"`
	ProductID   uuid.UUID                  `json:"productId"`
	DisplayName string                     `json:"displayName"`
	PriceCents  int64                      `json:"priceCents"`
	Capacity    domain.DailyCapacityConfig `json:"capacity"`
}

// OrderItemResponse is one line of an order.
type OrderItemResponse struct {
	ProductID      uuid.UUID `json:"productId"`
	ProductName    string    `json:"productName"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
}

// OrderResponse is the JSON shape of an order. Answers keep their stored
// key order.
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	EventID       *uuid.UUID          `json:"eventId"`
	CustomerName  string              `json:"customerName"`
	CustomerEmail string              `json:"customerEmail"`
	Status        domain.OrderStatus  `json:"status"`
	Answers       domain.Answers      `json:"answers"`
	Items         []OrderItemResponse `json:"items"`
	TotalCents    int64               `json:"totalCents"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// OrderPage is the body of GET /events/{id}/orders.
type OrderPage struct {
	Data       []OrderResponse `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// ProductDayResponse is one limited product's capacity on a day.
type ProductDayResponse struct {
	ProductID uuid.UUID      `json:"productId"`
	Product   string         `json:"product"`
	State     capacity.State `json:"state"`
	Limit     *int           `json:"limit,omitempty"`
	Used      int            `json:"used"`
	Left      *int           `json:"left,omitempty"`
}

// DayResponse is the availability of one calendar day.
type DayResponse struct {
	Day       string               `json:"day"`
	Available bool                 `json:"available"`
	Blocked   bool                 `json:"blocked"`
	Left      *int                 `json:"left"`
	Products  []ProductDayResponse `json:"products"`
}

// VisibilityResponse lists the field ids shown for a partial submission.
type VisibilityResponse struct {
	Visible []string `json:"visible"`
}

// ExportResponse is the JSON rendition of an export table.
type ExportResponse struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// --- mapping helpers --------------------------------------------------------

func (b eventRequest) toDomain(id uuid.UUID) domain.Event {
	e := domain.Event{
		ID:          id,
		Slug:        b.Slug,
		Name:        b.Name,
		Description: b.Description,
		Active:      b.Active,
		Schema:      b.Schema,
	}
	if b.StartsOn != nil {
		e.StartsOn = &b.StartsOn.Time
	}
	if b.EndsOn != nil {
		e.EndsOn = &b.EndsOn.Time
	}
	if e.Schema == nil {
		e.Schema = domain.Schema{}
	}
	return e
}

func toDate(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}

func eventToResponse(e domain.Event) EventResponse {
	schema := e.Schema
	if schema == nil {
		schema = domain.Schema{}
	}
	return EventResponse{
		ID:          e.ID,
		Slug:        e.Slug,
		Name:        e.Name,
		Description: e.Description,
		Active:      e.Active,
		StartsOn:    toDate(e.StartsOn),
		EndsOn:      toDate(e.EndsOn),
		Schema:      schema,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func productToResponse(p domain.Product) ProductResponse {
	return ProductResponse{ID: p.ID, Name: p.Name, PriceCents: p.PriceCents, Stock: p.Stock}
}

func eventProductToResponse(ep domain.EventProduct) EventProductResponse {
	return EventProductResponse{
		EventID:     ep.EventID,
		ProductID:   ep.ProductID,
		DisplayName: ep.DisplayName,
		PriceCents:  ep.PriceCents,
		Capacity:    ep.Capacity,
	}
}

func orderToResponse(o domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		}
	}
	answers := o.Answers
	if answers == nil {
		answers = domain.Answers{}
	}
	return OrderResponse{
		ID:            o.ID,
		EventID:       o.EventID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Status:        o.Status,
		Answers:       answers,
		Items:         items,
		TotalCents:    o.TotalCents,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func dayToResponse(d capacity.DayAvailability) DayResponse {
	products := make([]ProductDayResponse, len(d.Products))
	for i, p := range d.Products {
		pr := ProductDayResponse{
			ProductID: p.ProductID,
			Product:   p.Product,
			State:     p.Remaining.State,
			Used:      p.Remaining.Used,
		}
		switch p.Remaining.State {
		case capacity.Available, capacity.SoldOut:
			limit, left := p.Remaining.Limit, p.Remaining.Left
			pr.Limit, pr.Left = &limit, &left
		case capacity.Blocked:
			zero := 0
			pr.Left = &zero
		}
		products[i] = pr
	}
	return DayResponse{Day: d.Day, Available: d.Available, Blocked: d.Blocked, Left: d.Left, Products: products}
}
