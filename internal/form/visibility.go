// Package form implements the runtime rules of an event's checkout form:
// which fields are shown, whether a submission is acceptable, and what
// an operator may save as a form.
package form

import "github.com/campusshop/storefront/internal/domain"

// Visibility records, per field id, whether the field is currently shown.
type Visibility map[string]bool

// Visible reports whether the field with the given id is shown.
// Unknown ids are not visible.
func (v Visibility) Visible(id string) bool {
	return v[id]
}

// Resolve decides which fields are visible for the answers entered so far.
//
// Resolution is a single pass in list order. A field without a condition is
// always visible. A conditional field is visible iff the trigger field's
// current answer matches the condition. Only fields earlier in the list can
// act as triggers; a condition naming a later, unknown, or self field can
// never be satisfied. A hidden trigger is still compared by its stored value.
func Resolve(schema domain.Schema, answers domain.Answers) Visibility {
	vis := make(Visibility, len(schema))
	for i, f := range schema {
		if f.ShowWhen == nil {
			vis[f.ID] = true
			continue
		}
		at := schema.Index(f.ShowWhen.FieldID)
		if at < 0 || at >= i {
			vis[f.ID] = false
			continue
		}
		current, _ := answers.Get(schema[at].Label)
		vis[f.ID] = f.ShowWhen.Matches(current.String())
	}
	return vis
}

// VisibleIDs returns the ids of visible fields in schema order.
func VisibleIDs(schema domain.Schema, answers domain.Answers) []string {
	vis := Resolve(schema, answers)
	out := make([]string, 0, len(schema))
	for _, f := range schema {
		if vis[f.ID] {
			out = append(out, f.ID)
		}
	}
	return out
}
