package capacity_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusshop/storefront/internal/capacity"
	"github.com/campusshop/storefront/internal/domain"
)

func TestCheckCart_reportsEveryFailingProduct(t *testing.T) {
	roses, tulips, cards := uuid.New(), uuid.New(), uuid.New()
	products := []domain.EventProduct{
		{ProductID: roses, DisplayName: "Roses", Capacity: domain.DailyCapacityConfig{HasLimit: true, DefaultLimit: ptr(1)}},
		{ProductID: tulips, DisplayName: "Tulips", Capacity: domain.DailyCapacityConfig{
			HasLimit: true, DefaultLimit: ptr(10), Overrides: map[string]*int{"2026-02-14": ptr(0)},
		}},
		{ProductID: cards, DisplayName: "Card"},
	}
	u := capacity.Usage{roses: {"2026-02-14": 1}}

	err := capacity.CheckCart(products, u, []uuid.UUID{roses, tulips, cards, uuid.New()}, "2026-02-14")

	var ce capacity.Errors
	require.True(t, errors.As(err, &ce))
	require.Len(t, ce, 2)
	assert.Equal(t, capacity.ReasonSoldOut, ce[0].Reason)
	assert.Equal(t, "Roses is sold out on 2026-02-14", ce[0].String())
	assert.Equal(t, capacity.ReasonBlocked, ce[1].Reason)
	assert.Equal(t, "Tulips is not available on 2026-02-14", ce[1].String())
}

func TestCalendar_unlimitedProductsDoNotCap(t *testing.T) {
	products := []domain.EventProduct{{ProductID: uuid.New(), DisplayName: "Card"}}

	cal := capacity.Calendar(products, nil, []string{"2026-02-14"})

	require.Len(t, cal, 1)
	assert.True(t, cal[0].Available)
	assert.Nil(t, cal[0].Left)
	assert.Empty(t, cal[0].Products)
}

func TestCalendar_leftIsMinimumAcrossProducts(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	products := []domain.EventProduct{
		{ProductID: a, Capacity: domain.DailyCapacityConfig{HasLimit: true, DefaultLimit: ptr(5)}},
		{ProductID: b, Capacity: domain.DailyCapacityConfig{HasLimit: true, DefaultLimit: ptr(3)}},
	}
	u := capacity.Usage{a: {"2026-02-14": 1}, b: {"2026-02-14": 2}}

	cal := capacity.Calendar(products, u, []string{"2026-02-14"})

	require.NotNil(t, cal[0].Left)
	assert.Equal(t, 1, *cal[0].Left)
	assert.True(t, cal[0].Available)
}

func TestCheckCart_dottedTimeOrdersCountOnTheirDay(t *testing.T) {
	roses := uuid.New()
	products := []domain.EventProduct{
		{ProductID: roses, DisplayName: "Roses", Capacity: domain.DailyCapacityConfig{HasLimit: true, DefaultLimit: ptr(1)}},
	}
	records := []domain.CapacityRecord{{
		OrderID:    uuid.New(),
		Status:     domain.OrderPending,
		ProductIDs: []uuid.UUID{roses},
		Answers: domain.Answers{{Key: "Delivery Details", Value: domain.RowsValue(
			domain.Row{{Key: "time", Value: "10.30"}, {Key: "date", Value: "2026-02-13"}},
		)}},
	}}

	u := capacity.Count(records, "0000-01-01", "9999-12-31")

	assert.Equal(t, map[string]int{"2026-02-13": 1}, u[roses])
	err := capacity.CheckCart(products, u, []uuid.UUID{roses}, "2026-02-13")
	var ce capacity.Errors
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Roses is sold out on 2026-02-13", ce[0].String())
}
