// Package handler implements the HTTP handlers for the storefront API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, event.go, order.go, ...) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campusshop/storefront/internal/capacity"
	"github.com/campusshop/storefront/internal/domain"
	"github.com/campusshop/storefront/internal/service"
)

// EventServicer defines the event configuration operations the handlers
// depend on. Defining the interface here (in the consumer package) lets
// handler tests inject a mock without touching the service layer.
type EventServicer interface {
	Create(ctx context.Context, e domain.Event) (domain.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error)
	GetBySlug(ctx context.Context, slug string) (domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	Update(ctx context.Context, e domain.Event) (domain.Event, error)
	ReplaceSchema(ctx context.Context, id uuid.UUID, schema domain.Schema) (domain.Event, error)
	VisibleFields(ctx context.Context, id uuid.UUID, answers domain.Answers) ([]string, error)
	Products(ctx context.Context, eventID uuid.UUID) ([]domain.EventProduct, error)
	AttachProduct(ctx context.Context, eventID, productID uuid.UUID, displayName string, priceCents *int64) (domain.EventProduct, error)
	SetCapacity(ctx context.Context, eventID, productID uuid.UUID, cfg domain.DailyCapacityConfig) (domain.EventProduct, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// AvailabilityServicer computes an event's per-day capacity calendar.
type AvailabilityServicer interface {
	Calendar(ctx context.Context, eventID uuid.UUID, from, to time.Time, productIDs []uuid.UUID) ([]capacity.DayAvailability, error)
}

// CheckoutServicer places orders.
type CheckoutServicer interface {
	PlaceOrder(ctx context.Context, eventID uuid.UUID, req service.PlaceOrderRequest) (domain.Order, error)
}

// OrderServicer defines the admin operations on placed orders.
type OrderServicer interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID, p domain.PaginationParams) ([]domain.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (domain.Order, error)
	UpdateAnswers(ctx context.Context, id uuid.UUID, answers domain.Answers) (domain.Order, error)
}

// ExportServicer builds export tables and queues sheet syncs.
type ExportServicer interface {
	Table(ctx context.Context, eventID uuid.UUID) (domain.Event, domain.ExportTable, error)
	SyncSheet(ctx context.Context, eventID uuid.UUID) (domain.ExportTable, error)
}

var (
	_ EventServicer        = (*service.EventService)(nil)
	_ AvailabilityServicer = (*service.AvailabilityService)(nil)
	_ CheckoutServicer     = (*service.CheckoutService)(nil)
	_ OrderServicer        = (*service.OrderService)(nil)
	_ ExportServicer       = (*service.ExportService)(nil)
)

// Services bundles the dependencies of Server. Nil entries are allowed in
// tests that only exercise some routes.
type Services struct {
	Events       EventServicer
	Availability AvailabilityServicer
	Checkout     CheckoutServicer
	Orders       OrderServicer
	Export       ExportServicer
}

// Server holds the services every handler reaches into.
type Server struct {
	events       EventServicer
	availability AvailabilityServicer
	checkout     CheckoutServicer
	orders       OrderServicer
	export       ExportServicer
	log          *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		events:       svc.Events,
		availability: svc.Availability,
		checkout:     svc.Checkout,
		orders:       svc.Orders,
		export:       svc.Export,
		log:          log,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Services{}, nil)
}

// Routes returns the API router. Mount it under the middleware stack in main.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.ListProducts)
		r.Post("/", s.CreateProduct)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", s.ListEvents)
		r.Post("/", s.CreateEvent)
		r.Get("/slug/{slug}", s.GetEventBySlug)

		r.Route("/{eventID}", func(r chi.Router) {
			r.Get("/", s.GetEvent)
			r.Put("/", s.UpdateEvent)
			r.Put("/schema", s.ReplaceSchema)
			r.Post("/visibility", s.ResolveVisibility)

			r.Get("/products", s.ListEventProducts)
			r.Put("/products/{productID}", s.AttachProduct)
			r.Put("/products/{productID}/capacity", s.SetCapacity)

			r.Get("/availability", s.GetAvailability)

			r.Post("/orders", s.PlaceOrder)
			r.Get("/orders", s.ListOrders)

			r.Get("/export", s.GetExport)
			r.Post("/export/sheet-sync", s.SyncSheet)
		})
	})

	r.Route("/orders/{orderID}", func(r chi.Router) {
		r.Get("/", s.GetOrder)
		r.Patch("/status", s.UpdateOrderStatus)
		r.Put("/answers", s.UpdateOrderAnswers)
	})
	return r
}
