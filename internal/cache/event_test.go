package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusshop/storefront/internal/cache"
	"github.com/campusshop/storefront/internal/domain"
)

func newCache(t *testing.T) (*cache.EventCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewEventCache(rdb, 30*time.Second, nil), mr
}

func sampleEvent() domain.Event {
	return domain.Event{
		ID:        uuid.New(),
		Slug:      "valentines",
		Name:      "Valentine's Flowers",
		Active:    true,
		CreatedAt: time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC),
		Schema: domain.Schema{
			{ID: "size", Label: "Size", Type: domain.FieldRadio, Choice: &domain.ChoiceConstraints{Options: []string{"S", "M"}}},
		},
	}
}

func TestEventCache_RoundTrip(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	e := sampleEvent()

	_, ok := c.Event(ctx, e.ID)
	assert.False(t, ok, "cold cache")

	c.SetEvent(ctx, e)
	got, ok := c.Event(ctx, e.ID)

	require.True(t, ok)
	assert.Equal(t, e, got)
}

func TestEventCache_Products(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	eventID := uuid.New()
	two := 2
	products := []domain.EventProduct{{
		EventID: eventID, ProductID: uuid.New(), DisplayName: "Roses", PriceCents: 1250,
		Capacity: domain.DailyCapacityConfig{HasLimit: true, DefaultLimit: &two, Overrides: map[string]*int{"2026-02-14": nil}},
	}}

	c.SetProducts(ctx, eventID, products)
	got, ok := c.Products(ctx, eventID)

	require.True(t, ok)
	assert.Equal(t, products, got)
}

func TestEventCache_InvalidateAndExpiry(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	e := sampleEvent()

	c.SetEvent(ctx, e)
	c.SetProducts(ctx, e.ID, nil)
	c.Invalidate(ctx, e.ID)

	_, ok := c.Event(ctx, e.ID)
	assert.False(t, ok)
	_, ok = c.Products(ctx, e.ID)
	assert.False(t, ok)

	c.SetEvent(ctx, e)
	mr.FastForward(31 * time.Second)
	_, ok = c.Event(ctx, e.ID)
	assert.False(t, ok, "entry should expire after the TTL")
}

func TestEventCache_NilClientIsAlwaysMiss(t *testing.T) {
	c := cache.NewEventCache(nil, time.Minute, nil)
	ctx := context.Background()
	e := sampleEvent()

	c.SetEvent(ctx, e)
	c.Invalidate(ctx, e.ID)
	_, ok := c.Event(ctx, e.ID)

	assert.False(t, ok)
}

func TestEventCache_UnreachableRedisDegrades(t *testing.T) {
	c, mr := newCache(t)
	mr.Close()
	ctx := context.Background()
	e := sampleEvent()

	c.SetEvent(ctx, e)
	_, ok := c.Event(ctx, e.ID)

	assert.False(t, ok)
}
