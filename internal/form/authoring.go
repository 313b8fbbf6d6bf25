package form

import (
	"fmt"

	"github.com/campusshop/storefront/internal/domain"
)

// CheckSchema enforces the rules an operator-authored form must satisfy
// before it is saved. Every violation is reported, keyed by the field's
// label (or id when the label is missing).
//
// Conditions may only reference fields earlier in the list. Resolve relies
// on this to stay a single pass.
func CheckSchema(schema domain.Schema) error {
	var errs ValidationErrors
	add := func(f domain.FieldDefinition, format string, args ...any) {
		name := f.Label
		if name == "" {
			name = f.ID
		}
		errs = append(errs, FieldError{Field: name, Message: fmt.Sprintf(format, args...)})
	}

	ids := make(map[string]bool, len(schema))
	labels := make(map[string]bool, len(schema))
	for i, f := range schema {
		switch {
		case f.ID == "":
			add(f, "id is required")
		case ids[f.ID]:
			add(f, "duplicate id %q", f.ID)
		}
		ids[f.ID] = true

		switch {
		case f.Label == "":
			add(f, "label is required")
		case labels[f.Label]:
			add(f, "duplicate label")
		}
		labels[f.Label] = true

		if !f.Type.Valid() {
			add(f, "unknown type %q", f.Type)
			continue
		}

		if f.ShowWhen != nil {
			at := schema.Index(f.ShowWhen.FieldID)
			switch {
			case at < 0:
				add(f, "showWhen references unknown field %q", f.ShowWhen.FieldID)
			case at >= i:
				add(f, "showWhen must reference an earlier field")
			case schema[at].Type == domain.FieldMessage:
				add(f, "showWhen cannot reference a message field")
			}
		}

		switch f.Type {
		case domain.FieldSelect, domain.FieldRadio:
			if len(f.Options()) == 0 {
				add(f, "at least one option is required")
			}
		case domain.FieldNumber:
			if c := f.Number; c != nil && c.Min != nil && c.Max != nil && *c.Min > *c.Max {
				add(f, "min must not exceed max")
			}
		case domain.FieldRepeater:
			checkRepeaterSchema(f, add)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkRepeaterSchema(f domain.FieldDefinition, add func(domain.FieldDefinition, string, ...any)) {
	c := f.Repeater
	if c == nil || len(c.Columns) == 0 {
		add(f, "at least one column is required")
		return
	}
	seen := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		switch {
		case col.ID == "":
			add(f, "column id is required")
		case seen[col.ID]:
			add(f, "duplicate column id %q", col.ID)
		}
		seen[col.ID] = true
		if col.Label == "" {
			add(f, "column %q needs a label", col.ID)
		}
		if !col.Type.Valid() {
			add(f, "column %q has unknown type %q", col.ID, col.Type)
		}
		if col.Type == domain.ColumnSelect && len(col.Options) == 0 {
			add(f, "column %q needs at least one option", col.ID)
		}
	}
	if c.MinRows < 0 || c.MaxRows < 0 || c.DefaultRows < 0 {
		add(f, "row counts must not be negative")
		return
	}
	if c.MaxRows > 0 && c.MinRows > c.MaxRows {
		add(f, "minRows must not exceed maxRows")
	}
	if c.MaxRows > 0 && c.DefaultRows > c.MaxRows {
		add(f, "defaultRows must not exceed maxRows")
	}
}
