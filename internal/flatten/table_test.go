package flatten_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusshop/storefront/internal/domain"
	"github.com/campusshop/storefront/internal/flatten"
)

func TestTable_unionOfColumnsInFirstSeenOrder(t *testing.T) {
	placed := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	one := domain.Order{
		ID: uuid.New(), CustomerName: "Ann", CustomerEmail: "ann@example.com",
		Status: domain.OrderPending, CreatedAt: placed,
		Answers: domain.Answers{{Key: "Recipient", Value: domain.StringValue("Sam")}},
		Items: []domain.OrderItem{
			{ProductName: "Roses", Quantity: 2, UnitPriceCents: 1250},
			{ProductName: "Card", Quantity: 1, UnitPriceCents: 300},
		},
	}
	two := domain.Order{
		ID: uuid.New(), CustomerName: "Bo", Status: domain.OrderConfirmed, CreatedAt: placed,
		Answers: domain.Answers{
			{Key: "Delivery Details", Value: domain.RowsValue(domain.Row{{Key: "date", Value: "2026-02-13"}})},
			{Key: "Recipient", Value: domain.StringValue("Kim")},
		},
	}

	tbl := flatten.Table(testSchema(), []domain.Order{one, two})

	wantHeaders := append(append([]string{}, flatten.OrderHeaders...), "Recipient", "Date 1", "Time 1", "Location 1")
	assert.Equal(t, wantHeaders, tbl.Headers)
	require.Len(t, tbl.Rows, 3)

	n := len(flatten.OrderHeaders)
	assert.Equal(t, []string{"Roses", "2", "12.50", "25.00"}, tbl.Rows[0][5:n])
	assert.Equal(t, "2026-02-10T09:30:00Z", tbl.Rows[0][1])
	assert.Equal(t, []string{"Sam", "", "", ""}, tbl.Rows[0][n:])
	assert.Equal(t, "Card", tbl.Rows[1][5])

	// Order without items still gets one row.
	assert.Equal(t, []string{"", "", "", ""}, tbl.Rows[2][5:n])
	assert.Equal(t, []string{"Kim", "2026-02-13", "-", "-"}, tbl.Rows[2][n:])
	for _, r := range tbl.Rows {
		assert.Len(t, r, len(tbl.Headers))
	}
}

func TestTable_noOrders(t *testing.T) {
	tbl := flatten.Table(testSchema(), nil)

	assert.Equal(t, flatten.OrderHeaders, tbl.Headers)
	assert.Empty(t, tbl.Rows)
}
