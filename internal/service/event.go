package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusshop/storefront/internal/domain"
	"github.com/campusshop/storefront/internal/form"
	"github.com/campusshop/storefront/internal/repo"
)

// EventService manages events, their checkout forms, and the products and
// capacity rules offered in them. Reads go through the cache; every write
// invalidates the event's cache entries.
type EventService struct {
	events        repo.EventRepo
	products      repo.ProductRepo
	eventProducts repo.EventProductRepo
	cache         EventCache
	log           *slog.Logger
}

// NewEventService constructs an EventService.
func NewEventService(events repo.EventRepo, products repo.ProductRepo, eventProducts repo.EventProductRepo, cache EventCache, log *slog.Logger) *EventService {
	if log == nil {
		log = slog.Default()
	}
	return &EventService{events: events, products: products, eventProducts: eventProducts, cache: cache, log: log}
}

// Create validates and persists a new event. An empty slug is derived
// from the name.
func (s *EventService) Create(ctx context.Context, e domain.Event) (domain.Event, error) {
	e, err := normalizeEvent(e)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Create: %w", err)
	}
	if err := form.CheckSchema(e.Schema); err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Create: %w", err)
	}
	created, err := s.events.Create(ctx, e)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns an event, from the cache when possible.
func (s *EventService) GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	if e, ok := s.cache.Event(ctx, id); ok {
		return e, nil
	}
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.GetByID: %w", err)
	}
	s.cache.SetEvent(ctx, e)
	return e, nil
}

// GetBySlug returns an event by its public slug.
func (s *EventService) GetBySlug(ctx context.Context, slug string) (domain.Event, error) {
	e, err := s.events.GetBySlug(ctx, Slugify(slug))
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.GetBySlug: %w", err)
	}
	s.cache.SetEvent(ctx, e)
	return e, nil
}

// List returns all events.
func (s *EventService) List(ctx context.Context) ([]domain.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.EventService.List: %w", err)
	}
	return events, nil
}

// Update validates and overwrites an event's descriptive fields.
func (s *EventService) Update(ctx context.Context, e domain.Event) (domain.Event, error) {
	e, err := normalizeEvent(e)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Update: %w", err)
	}
	updated, err := s.events.Update(ctx, e)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Update: %w", err)
	}
	s.cache.Invalidate(ctx, e.ID)
	return updated, nil
}

// ReplaceSchema swaps an event's checkout form for a new one. Orders
// already placed keep their answers as stored.
func (s *EventService) ReplaceSchema(ctx context.Context, id uuid.UUID, schema domain.Schema) (domain.Event, error) {
	if err := form.CheckSchema(schema); err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.ReplaceSchema: %w", err)
	}
	updated, err := s.events.UpdateSchema(ctx, id, schema)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.ReplaceSchema: %w", err)
	}
	s.cache.Invalidate(ctx, id)
	s.log.InfoContext(ctx, "event schema replaced", "event_id", id, "fields", len(schema))
	return updated, nil
}

// VisibleFields resolves which fields of an event's form are shown for a
// partially filled answer payload.
func (s *EventService) VisibleFields(ctx context.Context, id uuid.UUID, answers domain.Answers) ([]string, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.EventService.VisibleFields: %w", err)
	}
	return form.VisibleIDs(e.Schema, answers), nil
}

// Products returns the products offered in an event, from the cache when possible.
func (s *EventService) Products(ctx context.Context, eventID uuid.UUID) ([]domain.EventProduct, error) {
	if ps, ok := s.cache.Products(ctx, eventID); ok {
		return ps, nil
	}
	ps, err := s.eventProducts.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("service.EventService.Products: %w", err)
	}
	s.cache.SetProducts(ctx, eventID, ps)
	return ps, nil
}

// AttachProduct offers a product in an event. An empty display name and a
// nil price fall back to the product's own.
func (s *EventService) AttachProduct(ctx context.Context, eventID, productID uuid.UUID, displayName string, priceCents *int64) (domain.EventProduct, error) {
	if priceCents != nil && *priceCents < 0 {
		return domain.EventProduct{}, fmt.Errorf("service.EventService.AttachProduct: %w", validationf("price must not be negative"))
	}
	ep, err := s.eventProducts.Attach(ctx, eventID, productID, strings.TrimSpace(displayName), priceCents)
	if err != nil {
		return domain.EventProduct{}, fmt.Errorf("service.EventService.AttachProduct: %w", err)
	}
	s.cache.Invalidate(ctx, eventID)
	return ep, nil
}

// SetCapacity replaces a product's daily capacity rules inside an event.
func (s *EventService) SetCapacity(ctx context.Context, eventID, productID uuid.UUID, cfg domain.DailyCapacityConfig) (domain.EventProduct, error) {
	if err := checkCapacityConfig(cfg); err != nil {
		return domain.EventProduct{}, fmt.Errorf("service.EventService.SetCapacity: %w", err)
	}
	ep, err := s.eventProducts.SetCapacity(ctx, eventID, productID, cfg)
	if err != nil {
		return domain.EventProduct{}, fmt.Errorf("service.EventService.SetCapacity: %w", err)
	}
	s.cache.Invalidate(ctx, eventID)
	return ep, nil
}

// CreateProduct validates and persists a product.
func (s *EventService) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "":
		return domain.Product{}, fmt.Errorf("service.EventService.CreateProduct: %w", validationf("name is required"))
	case p.PriceCents < 0:
		return domain.Product{}, fmt.Errorf("service.EventService.CreateProduct: %w", validationf("price must not be negative"))
	case p.Stock != nil && *p.Stock < 0:
		return domain.Product{}, fmt.Errorf("service.EventService.CreateProduct: %w", validationf("stock must not be negative"))
	}
	created, err := s.products.Create(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("service.EventService.CreateProduct: %w", err)
	}
	return created, nil
}

// ListProducts returns every product in the catalog.
func (s *EventService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	ps, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.EventService.ListProducts: %w", err)
	}
	return ps, nil
}

func normalizeEvent(e domain.Event) (domain.Event, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return e, validationf("name is required")
	}
	if e.Slug == "" {
		e.Slug = e.Name
	}
	e.Slug = Slugify(e.Slug)
	if e.Slug == "" {
		return e, validationf("slug must contain at least one letter or digit")
	}
	if e.StartsOn != nil && e.EndsOn != nil && e.EndsOn.Before(*e.StartsOn) {
		return e, validationf("end date must not be before start date")
	}
	return e, nil
}

func checkCapacityConfig(cfg domain.DailyCapacityConfig) error {
	if cfg.DefaultLimit != nil && *cfg.DefaultLimit < 0 {
		return validationf("defaultLimit must not be negative")
	}
	days := make([]string, 0, len(cfg.Overrides))
	for day := range cfg.Overrides {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		limit := cfg.Overrides[day]
		if _, err := time.Parse(domain.DayLayout, day); err != nil {
			return validationf("override key %q is not a YYYY-MM-DD date", day)
		}
		if limit != nil && *limit < 0 {
			return validationf("override for %s must not be negative", day)
		}
	}
	return nil
}
