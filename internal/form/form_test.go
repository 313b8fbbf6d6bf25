package form_test

import (
	"github.com/campusshop/storefront/internal/domain"
)

// sizeNotesSchema is a select "Size" with a text "Notes" shown only for M.
func sizeNotesSchema(notesRequired bool) domain.Schema {
	return domain.Schema{
		{
			ID: "size", Label: "Size", Type: domain.FieldSelect, Required: true,
			Choice: &domain.ChoiceConstraints{Options: []string{"S", "M"}},
		},
		{
			ID: "notes", Label: "Notes", Type: domain.FieldText, Required: notesRequired,
			ShowWhen: &domain.Condition{FieldID: "size", Values: []string{"M"}},
		},
	}
}

func deliveryRepeater(required bool, minRows int) domain.FieldDefinition {
	return domain.FieldDefinition{
		ID: "dd", Label: "Delivery Details", Type: domain.FieldRepeater, Required: required,
		Repeater: &domain.RepeaterConstraints{
			Columns: []domain.RepeaterColumn{
				{ID: "date", Label: "Date", Type: domain.ColumnDate},
				{ID: "time", Label: "Time", Type: domain.ColumnTime},
				{ID: "location", Label: "Location", Type: domain.ColumnText},
			},
			MinRows: minRows,
		},
	}
}

func answers(kv ...any) domain.Answers {
	var a domain.Answers
	for i := 0; i+1 < len(kv); i += 2 {
		key := kv[i].(string)
		switch v := kv[i+1].(type) {
		case string:
			a.Set(key, domain.StringValue(v))
		case bool:
			a.Set(key, domain.BoolValue(v))
		case domain.Value:
			a.Set(key, v)
		}
	}
	return a
}
