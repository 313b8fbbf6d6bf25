// Package service contains the business logic for the storefront API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/campusshop/storefront/internal/cache"
	"github.com/campusshop/storefront/internal/domain"
)

// EventCache is the read-through cache EventService keeps event
// configuration in. *cache.EventCache satisfies it.
type EventCache interface {
	Event(ctx context.Context, id uuid.UUID) (domain.Event, bool)
	SetEvent(ctx context.Context, e domain.Event)
	Products(ctx context.Context, eventID uuid.UUID) ([]domain.EventProduct, bool)
	SetProducts(ctx context.Context, eventID uuid.UUID, products []domain.EventProduct)
	Invalidate(ctx context.Context, eventID uuid.UUID)
}

var _ EventCache = (*cache.EventCache)(nil)

// EventConfig is the read side of event configuration that checkout,
// availability and export depend on. *EventService satisfies it.
type EventConfig interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error)
	Products(ctx context.Context, eventID uuid.UUID) ([]domain.EventProduct, error)
}

var _ EventConfig = (*EventService)(nil)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of characters other than
// letters and digits into a single hyphen, trimming hyphens at both ends.
// "Valentine's Day 2026!" becomes "valentine-s-day-2026".
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}
