package flatten_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusshop/storefront/internal/domain"
	"github.com/campusshop/storefront/internal/flatten"
)

func testSchema() domain.Schema {
	return domain.Schema{
		{ID: "intro", Label: "Welcome", Type: domain.FieldMessage, Content: "Thanks!"},
		{ID: "to", Label: "Recipient", Type: domain.FieldText},
		{ID: "anon", Label: "Anonymous?", Type: domain.FieldToggle},
		{
			ID: "dd", Label: "Delivery Details", Type: domain.FieldRepeater,
			Repeater: &domain.RepeaterConstraints{Columns: []domain.RepeaterColumn{
				{ID: "date", Label: "Date", Type: domain.ColumnDate},
				{ID: "time", Label: "Time", Type: domain.ColumnTime},
				{ID: "location", Label: "Location", Type: domain.ColumnText},
			}},
		},
	}
}

func names(cols []flatten.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func TestOrder_repeaterExpandsPerRow(t *testing.T) {
	answers := domain.Answers{
		{Key: "Delivery Details", Value: domain.RowsValue(
			domain.Row{{Key: "date", Value: "2026-02-13"}, {Key: "time", Value: "10:00"}, {Key: "location", Value: "Gym"}},
			domain.Row{{Key: "date", Value: "2026-02-14"}, {Key: "time", Value: ""}},
		)},
	}

	cols := flatten.Order(testSchema(), answers)

	assert.Equal(t, []string{"Date 1", "Time 1", "Location 1", "Date 2", "Time 2", "Location 2"}, names(cols))
	assert.Equal(t, "Gym", cols[2].Value)
	assert.Equal(t, flatten.Missing, cols[4].Value, "empty cell")
	assert.Equal(t, flatten.Missing, cols[5].Value, "absent cell")
}

func TestOrder_emptyRepeaterYieldsNoColumns(t *testing.T) {
	cols := flatten.Order(testSchema(), domain.Answers{
		{Key: "Delivery Details", Value: domain.RowsValue()},
	})

	assert.Empty(t, cols)
}

func TestOrder_skipsMarkerMessageAndUnknownKeys(t *testing.T) {
	answers := domain.Answers{
		{Key: domain.EventNameKey, Value: domain.StringValue("Valentine's")},
		{Key: "Welcome", Value: domain.StringValue("x")},
		{Key: "Old Field", Value: domain.StringValue("orphaned")},
		{Key: "Recipient", Value: domain.StringValue("Sam")},
	}

	cols := flatten.Order(testSchema(), answers)

	assert.Equal(t, []flatten.Column{{Name: "Recipient", Value: "Sam"}}, cols)
}

func TestOrder_followsStoredKeyOrder(t *testing.T) {
	answers := domain.Answers{
		{Key: "Anonymous?", Value: domain.BoolValue(true)},
		{Key: "Recipient", Value: domain.Value{}},
	}

	cols := flatten.Order(testSchema(), answers)

	assert.Equal(t, []flatten.Column{
		{Name: "Anonymous?", Value: "Yes"},
		{Name: "Recipient", Value: flatten.Missing},
	}, cols)
}

// TestOrder_idempotent verifies flattening the same input twice yields the
// same columns.
func TestOrder_idempotent(t *testing.T) {
	answers := domain.Answers{
		{Key: "Recipient", Value: domain.StringValue("Sam")},
		{Key: "Delivery Details", Value: domain.RowsValue(domain.Row{{Key: "Date", Value: "2026-02-13"}})},
	}

	first := flatten.Order(testSchema(), answers)
	second := flatten.Order(testSchema(), answers)

	assert.Equal(t, first, second)
	assert.Equal(t, "2026-02-13", first[1].Value, "label fallback for older rows")
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Value
		want string
	}{
		{"null", domain.Value{}, "-"},
		{"empty string", domain.StringValue(""), "-"},
		{"blank string", domain.StringValue("  "), "-"},
		{"string", domain.StringValue("Sam"), "Sam"},
		{"true", domain.BoolValue(true), "Yes"},
		{"false", domain.BoolValue(false), "No"},
		{"number keeps literal", domain.Value{Kind: domain.ValueNumber, Str: "1.50"}, "1.50"},
		{"list", domain.Value{Kind: domain.ValueList, List: []domain.Value{domain.StringValue("a"), domain.BoolValue(false)}}, "a, No"},
		{"empty list", domain.Value{Kind: domain.ValueList}, "-"},
		{"object", domain.Value{Kind: domain.ValueObject, Object: domain.Answers{
			{Key: "street", Value: domain.StringValue("1 Main")},
			{Key: "city", Value: domain.StringValue("Springfield")},
		}}, "1 Main, Springfield"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, flatten.Render(tc.in))
		})
	}
}
