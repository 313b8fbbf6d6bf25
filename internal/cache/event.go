// Package cache keeps a short-lived Redis copy of event configuration:
// the event with its checkout form, and the products offered in it.
//
// Every checkout and availability query reads this configuration, while
// operators change it rarely. The cache is optional: a nil client turns
// every call into a miss, and Redis errors are logged and treated as misses.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/campusshop/storefront/internal/domain"
)

const keyPrefix = "storefront:event:"

// EventCache reads and writes cached event configuration.
type EventCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

// NewEventCache constructs an EventCache. rdb may be nil to disable caching.
func NewEventCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *EventCache {
	if log == nil {
		log = slog.Default()
	}
	return &EventCache{rdb: rdb, ttl: ttl, log: log}
}

func eventKey(id uuid.UUID) string    { return keyPrefix + id.String() }
func productsKey(id uuid.UUID) string { return keyPrefix + id.String() + ":products" }

// cachedEvent mirrors domain.Event with stable JSON names.
type cachedEvent struct {
	ID          uuid.UUID     `json:"id"`
	Slug        string        `json:"slug"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Active      bool          `json:"active"`
	StartsOn    *time.Time    `json:"startsOn"`
	EndsOn      *time.Time    `json:"endsOn"`
	Schema      domain.Schema `json:"schema"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type cachedProduct struct {
	EventID     uuid.UUID                  `json:"eventId"`
	ProductID   uuid.UUID                  `json:"productId"`
	DisplayName string                     `json:"displayName"`
	PriceCents  int64                      `json:"priceCents"`
	Capacity    domain.DailyCapacityConfig `json:"capacity"`
}

// Event returns the cached event, if present.
func (c *EventCache) Event(ctx context.Context, id uuid.UUID) (domain.Event, bool) {
	var ce cachedEvent
	if !c.get(ctx, eventKey(id), &ce) {
		return domain.Event{}, false
	}
	return domain.Event(ce), true
}

// SetEvent stores an event for the configured TTL.
func (c *EventCache) SetEvent(ctx context.Context, e domain.Event) {
	c.set(ctx, eventKey(e.ID), cachedEvent(e))
}

// Products returns the cached products of an event, if present.
func (c *EventCache) Products(ctx context.Context, eventID uuid.UUID) ([]domain.EventProduct, bool) {
	var cps []cachedProduct
	if !c.get(ctx, productsKey(eventID), &cps) {
		return nil, false
	}
	out := make([]domain.EventProduct, len(cps))
	for i, cp := range cps {
		out[i] = domain.EventProduct(cp)
	}
	return out, true
}

// SetProducts stores the products of an event for the configured TTL.
func (c *EventCache) SetProducts(ctx context.Context, eventID uuid.UUID, products []domain.EventProduct) {
	cps := make([]cachedProduct, len(products))
	for i, p := range products {
		cps[i] = cachedProduct(p)
	}
	c.set(ctx, productsKey(eventID), cps)
}

// Invalidate drops everything cached for an event.
func (c *EventCache) Invalidate(ctx context.Context, eventID uuid.UUID) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, eventKey(eventID), productsKey(eventID)).Err(); err != nil {
		c.log.WarnContext(ctx, "cache invalidate failed", "event_id", eventID, "error", err)
	}
}

func (c *EventCache) get(ctx context.Context, key string, dst any) bool {
	if c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.WarnContext(ctx, "cache entry undecodable", "key", key, "error", err)
		return false
	}
	return true
}

func (c *EventCache) set(ctx context.Context, key string, v any) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.WarnContext(ctx, "cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}
