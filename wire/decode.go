package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Decode parses a JSON object into an ordered Object.
// Params: data encoded JSON object.
// Returns: ordered object where numbers are json.Number and arrays are []any.
func Decode(data []byte) (*Object, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	value, err := decodeValue(decoder)
	if err != nil {
		return nil, err
	}
	object, ok := value.(*Object)
	if !ok {
		return nil, fmt.Errorf("decode: top-level value is %T, want object", value)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: trailing data after object")
	}
	return object, nil
}

// decodeValue reads one JSON value from the token stream.
// Params: decoder positioned before the value.
// Returns: *Object, []any, string, bool, json.Number or nil.
func decodeValue(decoder *json.Decoder) (any, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	delim, ok := token.(json.Delim)
	if !ok {
		return token, nil
	}

	switch delim {
	case '{':
		object := NewObject()
		for decoder.More() {
			nameToken, err := decoder.Token()
			if err != nil {
				return nil, fmt.Errorf("decode field name: %w", err)
			}
			name, ok := nameToken.(string)
			if !ok {
				return nil, fmt.Errorf("decode: unexpected field name token %v", nameToken)
			}
			value, err := decodeValue(decoder)
			if err != nil {
				return nil, fmt.Errorf("decode field %q: %w", name, err)
			}
			object.Set(name, value)
		}
		if _, err := decoder.Token(); err != nil {
			return nil, fmt.Errorf("decode object end: %w", err)
		}
		return object, nil
	case '[':
		items := make([]any, 0)
		for decoder.More() {
			item, err := decodeValue(decoder)
			if err != nil {
				return nil, fmt.Errorf("decode array item[%d]: %w", len(items), err)
			}
			items = append(items, item)
		}
		if _, err := decoder.Token(); err != nil {
			return nil, fmt.Errorf("decode array end: %w", err)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("decode: unexpected delimiter %q", delim)
	}
}
