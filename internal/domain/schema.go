package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FieldType is the closed set of checkout field kinds.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldToggle   FieldType = "toggle"
	FieldDate     FieldType = "date"
	FieldTime     FieldType = "time"
	FieldNumber   FieldType = "number"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldRadio    FieldType = "radio"
	FieldRepeater FieldType = "repeater"
	FieldMessage  FieldType = "message"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldTextarea, FieldSelect, FieldCheckbox, FieldToggle,
		FieldDate, FieldTime, FieldNumber, FieldEmail, FieldPhone, FieldRadio,
		FieldRepeater, FieldMessage:
		return true
	}
	return false
}

// ColumnType is the kind of a repeater sub-column.
type ColumnType string

const (
	ColumnText   ColumnType = "text"
	ColumnDate   ColumnType = "date"
	ColumnTime   ColumnType = "time"
	ColumnSelect ColumnType = "select"
)

// Valid reports whether t is a known column type.
func (t ColumnType) Valid() bool {
	switch t {
	case ColumnText, ColumnDate, ColumnTime, ColumnSelect:
		return true
	}
	return false
}

// NumberConstraints applies to number fields. Nil bounds are open.
type NumberConstraints struct {
	Min  *float64
	Max  *float64
	Step *float64
}

// ChoiceConstraints applies to select and radio fields.
type ChoiceConstraints struct {
	Options []string
}

// RepeaterColumn is one sub-column of a repeater table.
type RepeaterColumn struct {
	ID      string     `json:"id"`
	Label   string     `json:"label"`
	Type    ColumnType `json:"type"`
	Options []string   `json:"options,omitempty"`
}

// RepeaterConstraints applies to repeater fields. MaxRows 0 means no maximum.
type RepeaterConstraints struct {
	Columns     []RepeaterColumn
	MinRows     int
	MaxRows     int
	DefaultRows int
}

// Condition makes a field visible only when an earlier field's current
// answer equals one of Values. List records whether the condition was
// authored as a list, so it round-trips unchanged.
type Condition struct {
	FieldID string
	Values  []string
	List    bool
}

// Matches reports whether the canonical answer string satisfies the condition.
func (c Condition) Matches(answer string) bool {
	for _, v := range c.Values {
		if v == answer {
			return true
		}
	}
	return false
}

// FieldDefinition is one field of an event's checkout form.
//
// Label is the key answers are stored under, not ID. Exactly one of the
// constraint payloads is set, and only for the type that owns it:
// Number for number, Choice for select and radio, Repeater for repeater,
// Content for message.
type FieldDefinition struct {
	ID          string
	Label       string
	Type        FieldType
	Required    bool
	Placeholder string
	ShowWhen    *Condition

	Number   *NumberConstraints
	Choice   *ChoiceConstraints
	Repeater *RepeaterConstraints
	Content  string
}

// Options returns the choice options for select and radio fields.
func (f FieldDefinition) Options() []string {
	if f.Choice == nil {
		return nil
	}
	return f.Choice.Options
}

// Columns returns the repeater columns, or nil for other field types.
func (f FieldDefinition) Columns() []RepeaterColumn {
	if f.Repeater == nil {
		return nil
	}
	return f.Repeater.Columns
}

// Schema is the ordered checkout form of an event.
type Schema []FieldDefinition

// Index returns the position of the field with the given id, or -1.
func (s Schema) Index(id string) int {
	for i, f := range s {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// ByLabel builds a lookup from label to field definition.
// When labels collide the earlier field wins.
func (s Schema) ByLabel() map[string]FieldDefinition {
	out := make(map[string]FieldDefinition, len(s))
	for _, f := range s {
		if _, ok := out[f.Label]; !ok {
			out[f.Label] = f
		}
	}
	return out
}

// fieldJSON is the flat wire shape produced by the admin form builder.
type fieldJSON struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Type        FieldType        `json:"type"`
	Required    bool             `json:"required"`
	Placeholder string           `json:"placeholder,omitempty"`
	ShowWhen    *conditionJSON   `json:"showWhen,omitempty"`
	Min         *float64         `json:"min,omitempty"`
	Max         *float64         `json:"max,omitempty"`
	Step        *float64         `json:"step,omitempty"`
	Options     []string         `json:"options,omitempty"`
	Columns     []RepeaterColumn `json:"columns,omitempty"`
	MinRows     *int             `json:"minRows,omitempty"`
	MaxRows     *int             `json:"maxRows,omitempty"`
	DefaultRows *int             `json:"defaultRows,omitempty"`
	Content     string           `json:"content,omitempty"`
}

type conditionJSON struct {
	FieldID string          `json:"fieldId"`
	Value   json.RawMessage `json:"value"`
}

// MarshalJSON writes the flat wire shape, emitting only the attributes that
// belong to the field's type.
func (f FieldDefinition) MarshalJSON() ([]byte, error) {
	w := fieldJSON{
		ID:          f.ID,
		Label:       f.Label,
		Type:        f.Type,
		Required:    f.Required,
		Placeholder: f.Placeholder,
	}
	if f.ShowWhen != nil {
		raw, err := encodeConditionValue(*f.ShowWhen)
		if err != nil {
			return nil, err
		}
		w.ShowWhen = &conditionJSON{FieldID: f.ShowWhen.FieldID, Value: raw}
	}
	switch f.Type {
	case FieldNumber:
		if f.Number != nil {
			w.Min, w.Max, w.Step = f.Number.Min, f.Number.Max, f.Number.Step
		}
	case FieldSelect, FieldRadio:
		if f.Choice != nil {
			w.Options = f.Choice.Options
		}
	case FieldRepeater:
		if f.Repeater != nil {
			w.Columns = f.Repeater.Columns
			w.MinRows = intPtr(f.Repeater.MinRows)
			w.MaxRows = intPtr(f.Repeater.MaxRows)
			w.DefaultRows = intPtr(f.Repeater.DefaultRows)
		}
	case FieldMessage:
		w.Content = f.Content
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the flat wire shape into the per-type payload.
// Attributes that do not belong to the declared type are dropped.
func (f *FieldDefinition) UnmarshalJSON(data []byte) error {
	var w fieldJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*f = FieldDefinition{
		ID:          w.ID,
		Label:       w.Label,
		Type:        w.Type,
		Required:    w.Required,
		Placeholder: w.Placeholder,
	}
	if w.ShowWhen != nil {
		cond, err := decodeCondition(*w.ShowWhen)
		if err != nil {
			return fmt.Errorf("field %q showWhen: %w", w.ID, err)
		}
		f.ShowWhen = &cond
	}
	switch w.Type {
	case FieldNumber:
		f.Number = &NumberConstraints{Min: w.Min, Max: w.Max, Step: w.Step}
	case FieldSelect, FieldRadio:
		f.Choice = &ChoiceConstraints{Options: w.Options}
	case FieldRepeater:
		f.Repeater = &RepeaterConstraints{
			Columns:     w.Columns,
			MinRows:     derefInt(w.MinRows),
			MaxRows:     derefInt(w.MaxRows),
			DefaultRows: derefInt(w.DefaultRows),
		}
	case FieldMessage:
		f.Content = w.Content
	}
	return nil
}

func decodeCondition(c conditionJSON) (Condition, error) {
	cond := Condition{FieldID: c.FieldID}
	raw := bytes.TrimSpace(c.Value)
	if len(raw) > 0 && raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return Condition{}, err
		}
		cond.List = true
		for _, it := range items {
			s, err := canonicalScalar(it)
			if err != nil {
				return Condition{}, err
			}
			cond.Values = append(cond.Values, s)
		}
		return cond, nil
	}
	s, err := canonicalScalar(raw)
	if err != nil {
		return Condition{}, err
	}
	cond.Values = []string{s}
	return cond, nil
}

func encodeConditionValue(c Condition) (json.RawMessage, error) {
	if c.List {
		return json.Marshal(c.Values)
	}
	if len(c.Values) == 0 {
		return json.RawMessage(`""`), nil
	}
	return json.Marshal(c.Values[0])
}

// canonicalScalar renders a JSON scalar the way answers are compared:
// strings as-is, booleans as true/false, numbers as written, null as "".
func canonicalScalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	case '{', '[':
		return "", fmt.Errorf("condition value must be a scalar, got %s", raw)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
