package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusshop/storefront/internal/domain"
)

// TestAnswers_UnmarshalJSON_preservesKeyOrder verifies that stored key order
// survives decoding, since export and date mining iterate in that order.
func TestAnswers_UnmarshalJSON_preservesKeyOrder(t *testing.T) {
	raw := `{"Zeta":"z","Alpha":"a","Middle":true}`

	var a domain.Answers
	require.NoError(t, json.Unmarshal([]byte(raw), &a))

	require.Len(t, a, 3)
	assert.Equal(t, "Zeta", a[0].Key)
	assert.Equal(t, "Alpha", a[1].Key)
	assert.Equal(t, "Middle", a[2].Key)
	assert.Equal(t, domain.ValueBool, a[2].Value.Kind)
}

// TestAnswers_UnmarshalJSON_arrayOfObjectsBecomesRows verifies that an array
// of row objects decodes as repeater rows, with cell order kept.
func TestAnswers_UnmarshalJSON_arrayOfObjectsBecomesRows(t *testing.T) {
	raw := `{"Delivery Details":[{"date":"2026-02-13","time":"10:00"},{"date":"2026-02-14","qty":2}]}`

	var a domain.Answers
	require.NoError(t, json.Unmarshal([]byte(raw), &a))

	v, ok := a.Get("Delivery Details")
	require.True(t, ok)
	require.Equal(t, domain.ValueRows, v.Kind)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, domain.Row{{Key: "date", Value: "2026-02-13"}, {Key: "time", Value: "10:00"}}, v.Rows[0])

	qty, ok := v.Rows[1].Get("qty")
	require.True(t, ok)
	assert.Equal(t, "2", qty, "numeric cells keep their literal text")
}

// TestAnswers_UnmarshalJSON_scalarArrayBecomesList verifies that arrays of
// scalars are not mistaken for repeater rows.
func TestAnswers_UnmarshalJSON_scalarArrayBecomesList(t *testing.T) {
	var a domain.Answers
	require.NoError(t, json.Unmarshal([]byte(`{"Toppings":["cheese","ham"]}`), &a))

	v, _ := a.Get("Toppings")
	require.Equal(t, domain.ValueList, v.Kind)
	assert.Len(t, v.List, 2)
}

// TestAnswers_MarshalJSON_writesStoredOrder verifies that encoding writes keys
// in stored order and keeps number literals and nulls intact.
func TestAnswers_MarshalJSON_writesStoredOrder(t *testing.T) {
	raw := `{"b":1.50,"a":null,"rows":[{"x":"1"}],"flag":false}`

	var a domain.Answers
	require.NoError(t, json.Unmarshal([]byte(raw), &a))

	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestAnswers_UnmarshalJSON_rejectsNonObject(t *testing.T) {
	var a domain.Answers
	err := json.Unmarshal([]byte(`["not","an","object"]`), &a)
	assert.Error(t, err)
}

func TestAnswers_Set_replacesInPlace(t *testing.T) {
	a := domain.Answers{
		{Key: "first", Value: domain.StringValue("1")},
		{Key: "second", Value: domain.StringValue("2")},
	}

	a.Set("first", domain.StringValue("one"))
	a.Set("third", domain.BoolValue(true))

	require.Len(t, a, 3)
	assert.Equal(t, "one", a[0].Value.Str)
	assert.Equal(t, "third", a[2].Key)
}

func TestValue_IsEmpty(t *testing.T) {
	assert.True(t, domain.Value{}.IsEmpty())
	assert.True(t, domain.StringValue("   ").IsEmpty())
	assert.True(t, domain.RowsValue().IsEmpty())
	assert.False(t, domain.BoolValue(false).IsEmpty(), "false is an answer")
	assert.False(t, domain.StringValue("x").IsEmpty())
}

func TestRow_Column_fallsBackToLabel(t *testing.T) {
	row := domain.Row{{Key: "Location", Value: "Gym"}}
	col := domain.RepeaterColumn{ID: "loc", Label: "Location"}

	v, ok := row.Column(col)

	require.True(t, ok)
	assert.Equal(t, "Gym", v)
}
