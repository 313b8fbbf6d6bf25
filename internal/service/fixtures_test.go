package service_test

import (
	"github.com/google/uuid"

	"github.com/campusshop/storefront/internal/domain"
)

func intPtr(n int) *int { return &n }

func valentineSchema() domain.Schema {
	return domain.Schema{
		{ID: "to", Label: "Recipient", Type: domain.FieldText, Required: true},
		{ID: "size", Label: "Size", Type: domain.FieldSelect, Required: true,
			Choice: &domain.ChoiceConstraints{Options: []string{"S", "M"}}},
		{ID: "notes", Label: "Notes", Type: domain.FieldText, Required: true,
			ShowWhen: &domain.Condition{FieldID: "size", Values: []string{"M"}}},
		{ID: "dd", Label: "Delivery Details", Type: domain.FieldRepeater, Required: true,
			Repeater: &domain.RepeaterConstraints{Columns: []domain.RepeaterColumn{
				{ID: "date", Label: "Date", Type: domain.ColumnDate},
				{ID: "time", Label: "Time", Type: domain.ColumnTime},
				{ID: "location", Label: "Location", Type: domain.ColumnText},
			}}},
	}
}

type valentineFixture struct {
	event domain.Event
	roses domain.EventProduct
	card  domain.EventProduct
}

func newValentineFixture() valentineFixture {
	ev := domain.Event{
		ID:     uuid.New(),
		Slug:   "valentines",
		Name:   "Valentine's Flowers",
		Active: true,
		Schema: valentineSchema(),
	}
	return valentineFixture{
		event: ev,
		roses: domain.EventProduct{
			EventID: ev.ID, ProductID: uuid.New(), DisplayName: "Roses", PriceCents: 1250,
			Capacity: domain.DailyCapacityConfig{
				HasLimit:     true,
				DefaultLimit: intPtr(2),
				Overrides:    map[string]*int{"2026-02-14": intPtr(0)},
			},
		},
		card: domain.EventProduct{EventID: ev.ID, ProductID: uuid.New(), DisplayName: "Card", PriceCents: 300},
	}
}

func (f valentineFixture) products() []domain.EventProduct {
	return []domain.EventProduct{f.roses, f.card}
}

func deliveryOn(day string) domain.Value {
	return domain.RowsValue(domain.Row{
		{Key: "date", Value: day},
		{Key: "time", Value: "10:00"},
		{Key: "location", Value: "Main Hall"},
	})
}

func answersFor(size, day string) domain.Answers {
	return domain.Answers{
		{Key: "Recipient", Value: domain.StringValue("Sam")},
		{Key: "Size", Value: domain.StringValue(size)},
		{Key: "Delivery Details", Value: deliveryOn(day)},
	}
}

func capacityRecord(day string, products ...uuid.UUID) domain.CapacityRecord {
	return domain.CapacityRecord{
		OrderID:    uuid.New(),
		Status:     domain.OrderPending,
		ProductIDs: products,
		Answers:    domain.Answers{{Key: "Delivery Details", Value: deliveryOn(day)}},
	}
}

// deliveryDottedTimeFirst is a delivery row whose time cell, written with a
// dot, comes before the date cell.
func deliveryDottedTimeFirst(day string) domain.Value {
	return domain.RowsValue(domain.Row{
		{Key: "time", Value: "10.30"},
		{Key: "date", Value: day},
		{Key: "location", Value: "Main Hall"},
	})
}
