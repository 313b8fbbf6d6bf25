// Package domain contains the core data types for the storefront API.
// This package has zero external dependencies and is imported by every other
// internal package (form, capacity, flatten, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is a time-boxed themed sub-shop with its own checkout form and
// capacity rules. Schema is authored by operators and read by every checkout.
type Event struct {
	ID          uuid.UUID
	Slug        string
	Name        string
	Description string
	Active      bool
	StartsOn    *time.Time
	EndsOn      *time.Time
	Schema      Schema
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product is a sellable item. Stock is nil when the product does not track
// inventory; otherwise it is decremented atomically at order creation.
type Product struct {
	ID         uuid.UUID
	Name       string
	PriceCents int64
	Stock      *int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EventProduct is a product offered inside an event, along with the
// per-day capacity rules that apply to it within that event.
type EventProduct struct {
	EventID     uuid.UUID
	ProductID   uuid.UUID
	DisplayName string
	PriceCents  int64
	Capacity    DailyCapacityConfig
}

