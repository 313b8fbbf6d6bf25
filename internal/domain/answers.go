package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// EventNameKey is the sibling marker key some stored answer payloads carry.
// It is not a form field and is skipped by capacity mining and export.
const EventNameKey = "eventName"

// ValueKind tags the shape of a stored answer value.
type ValueKind uint8

const (
	ValueNull ValueKind = iota
	ValueString
	ValueBool
	ValueNumber
	ValueRows
	ValueObject
	ValueList
)

// Cell is one column value in a repeater row.
type Cell struct {
	Key   string
	Value string
}

// Row is one repeater row: column id to cell text, in stored order.
type Row []Cell

// Get returns the cell stored under key.
func (r Row) Get(key string) (string, bool) {
	for _, c := range r {
		if c.Key == key {
			return c.Value, true
		}
	}
	return "", false
}

// Column returns the cell for a repeater column, looked up by column id and
// falling back to the column label for rows stored by older forms.
func (r Row) Column(col RepeaterColumn) (string, bool) {
	if v, ok := r.Get(col.ID); ok {
		return v, true
	}
	return r.Get(col.Label)
}

// Value is one stored answer. Only the payload matching Kind is meaningful.
// Number keeps the literal text it was stored with.
type Value struct {
	Kind   ValueKind
	Str    string
	Bool   bool
	Rows   []Row
	Object Answers
	List   []Value
}

// StringValue wraps s as a string answer.
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// BoolValue wraps b as a boolean answer.
func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// RowsValue wraps repeater rows as an answer.
func RowsValue(rows ...Row) Value { return Value{Kind: ValueRows, Rows: rows} }

// String returns the canonical scalar text of v: strings and numbers as
// stored, booleans as true/false, and "" for everything else.
func (v Value) String() string {
	switch v.Kind {
	case ValueString, ValueNumber:
		return v.Str
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	}
	return ""
}

// IsEmpty reports whether v carries no usable answer.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case ValueNull:
		return true
	case ValueString, ValueNumber:
		return strings.TrimSpace(v.Str) == ""
	case ValueRows:
		return len(v.Rows) == 0
	case ValueObject:
		return len(v.Object) == 0
	case ValueList:
		return len(v.List) == 0
	}
	return false
}

// Entry is one key/value pair of an answer payload.
type Entry struct {
	Key   string
	Value Value
}

// Answers is a submitted answer payload keyed by field label.
// It keeps the order keys were stored in, which consumers iterate by.
type Answers []Entry

// Get returns the value stored under key.
func (a Answers) Get(key string) (Value, bool) {
	for _, e := range a {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Set stores v under key, replacing an existing entry in place or
// appending a new one.
func (a *Answers) Set(key string, v Value) {
	for i := range *a {
		if (*a)[i].Key == key {
			(*a)[i].Value = v
			return
		}
	}
	*a = append(*a, Entry{Key: key, Value: v})
}

// MarshalJSON writes the payload as a JSON object in stored key order.
func (a Answers) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := e.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving key order.
// A JSON null decodes to an empty payload.
func (a *Answers) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return fmt.Errorf("decode answers: %w", err)
	}
	switch v.Kind {
	case ValueNull:
		*a = Answers{}
	case ValueObject:
		*a = v.Object
	default:
		return errors.New("decode answers: expected a JSON object")
	}
	return nil
}

// MarshalJSON writes v in its natural JSON shape.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueString:
		return json.Marshal(v.Str)
	case ValueBool:
		return json.Marshal(v.Bool)
	case ValueNumber:
		return []byte(v.Str), nil
	case ValueRows:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, r := range v.Rows {
			if i > 0 {
				buf.WriteByte(',')
			}
			obj := make(Answers, 0, len(r))
			for _, c := range r {
				obj = append(obj, Entry{Key: c.Key, Value: StringValue(c.Value)})
			}
			b, err := obj.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case ValueObject:
		return v.Object.MarshalJSON()
	case ValueList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	}
	return []byte("null"), nil
}

// UnmarshalJSON reads any JSON value into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	out, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// decodeValue reads one JSON value from the token stream. Arrays whose
// elements are all objects become repeater rows; other arrays become lists.
func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Value{}, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		return Value{Kind: ValueNumber, Str: t.String()}, nil
	case json.Delim:
		switch t {
		case '{':
			obj := Answers{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("unexpected object key %v", kt)
				}
				child, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, child)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{Kind: ValueObject, Object: obj}, nil
		case '[':
			var items []Value
			for dec.More() {
				child, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, child)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return listOrRows(items), nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

func listOrRows(items []Value) Value {
	if len(items) == 0 {
		return Value{Kind: ValueRows}
	}
	for _, it := range items {
		if it.Kind != ValueObject {
			return Value{Kind: ValueList, List: items}
		}
	}
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		row := make(Row, 0, len(it.Object))
		for _, e := range it.Object {
			row = append(row, Cell{Key: e.Key, Value: cellText(e.Value)})
		}
		rows = append(rows, row)
	}
	return Value{Kind: ValueRows, Rows: rows}
}

// cellText flattens a nested value to the text stored in a repeater cell.
func cellText(v Value) string {
	switch v.Kind {
	case ValueObject:
		parts := make([]string, 0, len(v.Object))
		for _, e := range v.Object {
			parts = append(parts, cellText(e.Value))
		}
		return strings.Join(parts, ", ")
	case ValueList:
		parts := make([]string, 0, len(v.List))
		for _, it := range v.List {
			parts = append(parts, cellText(it))
		}
		return strings.Join(parts, ", ")
	}
	return v.String()
}
