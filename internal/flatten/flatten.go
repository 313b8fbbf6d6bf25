// Package flatten turns free-form stored answers into a stable, ordered set
// of named columns for spreadsheet export and sheet sync.
//
// Answers are reinterpreted with the event's current schema. Keys the
// schema no longer knows are dropped silently, so renaming a field orphans
// its historical answers rather than failing the export.
package flatten

import (
	"fmt"
	"strings"

	"github.com/campusshop/storefront/internal/domain"
)

// Missing is written for answers that are null, absent, or blank.
const Missing = "-"

// joinSep separates the parts of object and list answers.
const joinSep = ", "

// Column is one named export cell.
type Column struct {
	Name  string
	Value string
}

// Order flattens one order's answers, iterating keys in stored order.
//
// Repeater answers expand to "{column label} {row}" for every declared
// column of every stored row (rows numbered from 1), so the column set
// varies between orders. Message fields and the eventName marker are
// skipped.
func Order(schema domain.Schema, answers domain.Answers) []Column {
	fields := schema.ByLabel()

	var cols []Column
	for _, e := range answers {
		if e.Key == domain.EventNameKey {
			continue
		}
		f, ok := fields[e.Key]
		if !ok || f.Type == domain.FieldMessage {
			continue
		}
		if f.Type == domain.FieldRepeater && e.Value.Kind == domain.ValueRows {
			cols = append(cols, repeaterColumns(f, e.Value.Rows)...)
			continue
		}
		cols = append(cols, Column{Name: f.Label, Value: Render(e.Value)})
	}
	return cols
}

func repeaterColumns(f domain.FieldDefinition, rows []domain.Row) []Column {
	defs := f.Columns()
	out := make([]Column, 0, len(rows)*len(defs))
	for i, row := range rows {
		for _, col := range defs {
			v, ok := row.Column(col)
			if !ok || v == "" {
				v = Missing
			}
			out = append(out, Column{Name: fmt.Sprintf("%s %d", col.Label, i+1), Value: v})
		}
	}
	return out
}

// Render writes a single answer value as cell text.
func Render(v domain.Value) string {
	switch v.Kind {
	case domain.ValueNull:
		return Missing
	case domain.ValueBool:
		if v.Bool {
			return "Yes"
		}
		return "No"
	case domain.ValueString, domain.ValueNumber:
		if strings.TrimSpace(v.Str) == "" {
			return Missing
		}
		return v.Str
	case domain.ValueObject:
		parts := make([]string, 0, len(v.Object))
		for _, e := range v.Object {
			parts = append(parts, Render(e.Value))
		}
		return joinOrMissing(parts)
	case domain.ValueList:
		parts := make([]string, 0, len(v.List))
		for _, it := range v.List {
			parts = append(parts, Render(it))
		}
		return joinOrMissing(parts)
	case domain.ValueRows:
		parts := make([]string, 0, len(v.Rows))
		for _, r := range v.Rows {
			cells := make([]string, 0, len(r))
			for _, c := range r {
				cells = append(cells, c.Value)
			}
			parts = append(parts, strings.Join(cells, " "))
		}
		return joinOrMissing(parts)
	}
	return Missing
}

func joinOrMissing(parts []string) string {
	if len(parts) == 0 {
		return Missing
	}
	return strings.Join(parts, joinSep)
}
