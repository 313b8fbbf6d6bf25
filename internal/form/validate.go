package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/campusshop/storefront/internal/domain"
)

// scalars checks single answer values against validator tags.
var scalars = validator.New()

// FieldError is one failed check, labeled with the field it belongs to.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is every failed check of a submission, in schema order.
// It matches domain.ErrValidation under errors.Is.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.String()
	}
	return domain.ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets callers test for domain.ErrValidation.
func (e ValidationErrors) Is(target error) bool {
	return target == domain.ErrValidation
}

// Validate checks a submission against the schema and returns the payload
// to persist.
//
// Only visible, non-message fields are checked. The returned payload holds
// exactly those fields that were answered, in schema order; hidden fields,
// message fields, and keys the schema does not know are dropped. Any failure
// rejects the whole submission with ValidationErrors.
func Validate(schema domain.Schema, answers domain.Answers) (domain.Answers, error) {
	vis := Resolve(schema, answers)

	var errs ValidationErrors
	cleaned := make(domain.Answers, 0, len(schema))
	for _, f := range schema {
		if f.Type == domain.FieldMessage || !vis[f.ID] {
			continue
		}
		v, present := answers.Get(f.Label)
		if !present {
			v = domain.Value{}
		}
		for _, msg := range checkField(f, v) {
			errs = append(errs, FieldError{Field: f.Label, Message: msg})
		}
		if present && v.Kind != domain.ValueNull {
			cleaned = append(cleaned, domain.Entry{Key: f.Label, Value: v})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return cleaned, nil
}

func checkField(f domain.FieldDefinition, v domain.Value) []string {
	switch f.Type {
	case domain.FieldCheckbox:
		if f.Required && !(v.Kind == domain.ValueBool && v.Bool) {
			return []string{"must be checked"}
		}
		return nil
	case domain.FieldToggle:
		if v.Kind == domain.ValueNull {
			if f.Required {
				return []string{"is required"}
			}
			return nil
		}
		if v.Kind != domain.ValueBool {
			return []string{"must be on or off"}
		}
		return nil
	case domain.FieldRepeater:
		return checkRepeater(f, v)
	}

	if v.IsEmpty() {
		if f.Required {
			return []string{"is required"}
		}
		return nil
	}
	switch v.Kind {
	case domain.ValueRows, domain.ValueObject, domain.ValueList:
		return []string{"must be a single value"}
	}

	text := strings.TrimSpace(v.String())
	switch f.Type {
	case domain.FieldNumber:
		return checkNumber(f.Number, text)
	case domain.FieldSelect, domain.FieldRadio:
		if opts := f.Options(); len(opts) > 0 && !contains(opts, text) {
			return []string{"must be one of " + strings.Join(opts, ", ")}
		}
	case domain.FieldEmail:
		if !ValidEmail(text) {
			return []string{"must be a valid email address"}
		}
	}
	return nil
}

func checkNumber(c *domain.NumberConstraints, text string) []string {
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return []string{"must be a number"}
	}
	if c == nil {
		return nil
	}
	if c.Min != nil && n < *c.Min {
		return []string{"must be at least " + formatFloat(*c.Min)}
	}
	if c.Max != nil && n > *c.Max {
		return []string{"must be at most " + formatFloat(*c.Max)}
	}
	return nil
}

func checkRepeater(f domain.FieldDefinition, v domain.Value) []string {
	var rows []domain.Row
	switch v.Kind {
	case domain.ValueNull:
	case domain.ValueRows:
		rows = v.Rows
	default:
		return []string{"must be a list of rows"}
	}

	var cons domain.RepeaterConstraints
	if f.Repeater != nil {
		cons = *f.Repeater
	}

	// An optional repeater may be left empty; otherwise rows must reach minRows.
	if !f.Required && len(rows) == 0 {
		return nil
	}

	var msgs []string
	if len(rows) < cons.MinRows {
		msgs = append(msgs, fmt.Sprintf("needs at least %d row(s)", cons.MinRows))
	}
	if cons.MaxRows > 0 && len(rows) > cons.MaxRows {
		msgs = append(msgs, fmt.Sprintf("allows at most %d row(s)", cons.MaxRows))
	}
	for i, row := range rows {
		for _, col := range cons.Columns {
			cell, ok := row.Column(col)
			cell = strings.TrimSpace(cell)
			if !ok || cell == "" {
				if f.Required {
					msgs = append(msgs, fmt.Sprintf("row %d: %s is required", i+1, col.Label))
				}
				continue
			}
			if col.Type == domain.ColumnSelect && len(col.Options) > 0 && !contains(col.Options, cell) {
				msgs = append(msgs, fmt.Sprintf("row %d: %s must be one of %s", i+1, col.Label, strings.Join(col.Options, ", ")))
			}
		}
	}
	return msgs
}

// ValidEmail reports whether s is a bare email address. Display-name forms
// such as "Bob <bob@example.com>" are rejected.
func ValidEmail(s string) bool {
	return scalars.Var(s, "email") == nil
}

func contains(list []string, s string) bool {
	for _, it := range list {
		if it == s {
			return true
		}
	}
	return false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
