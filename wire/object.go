// Package wire holds the canonical collector representation of events:
// field-ordered JSON documents and the immutable encoded event handed to the
// transport.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one named member of an Object.
// Params: field name and JSON-encodable value.
// Returns: ordered object member.
type Field struct {
	Name  string
	Value any
}

// Object is a JSON object that keeps fields in insertion order.
// Params: none; fields are appended with Set.
// Returns: ordered document node.
type Object struct {
	fields []Field
}

// NewObject creates an empty ordered object.
// Params: none.
// Returns: empty object.
func NewObject() *Object {
	return &Object{}
}

// Set appends one field to the object.
// Params: name field name; value string, bool, number, *Object, []*Object, []string or []any.
// Returns: receiver for chaining.
func (o *Object) Set(name string, value any) *Object {
	o.fields = append(o.fields, Field{Name: name, Value: value})
	return o
}

// Len returns the field count.
// Params: none.
// Returns: number of fields.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.fields)
}

// Names returns field names in emission order.
// Params: none.
// Returns: copied name list.
func (o *Object) Names() []string {
	if o == nil {
		return nil
	}
	names := make([]string, 0, len(o.fields))
	for _, field := range o.fields {
		names = append(names, field.Name)
	}
	return names
}

// Get returns the first field value with the given name.
// Params: name field name.
// Returns: value and true when present.
func (o *Object) Get(name string) (any, bool) {
	if o == nil {
		return nil, false
	}
	for _, field := range o.fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// Object returns a nested object field.
// Params: name field name.
// Returns: nested object or nil when absent or not an object.
func (o *Object) Object(name string) *Object {
	value, ok := o.Get(name)
	if !ok {
		return nil
	}
	nested, _ := value.(*Object)
	return nested
}

// MarshalJSON renders fields in insertion order.
// Params: none.
// Returns: JSON bytes or encode error for unsupported values.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if o != nil {
		for idx, field := range o.fields {
			if idx > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(field.Name)
			if err != nil {
				return nil, fmt.Errorf("encode field name %q: %w", field.Name, err)
			}
			buf.Write(name)
			buf.WriteByte(':')
			value, err := json.Marshal(field.Value)
			if err != nil {
				return nil, fmt.Errorf("encode field %q: %w", field.Name, err)
			}
			buf.Write(value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
