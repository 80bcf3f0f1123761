package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrEmpty is returned when the input holds no JSON value at all.
var ErrEmpty = errors.New("empty payload")

// ErrTooDeep is returned when arrays and objects nest deeper than MaxDepth.
var ErrTooDeep = errors.New("decode payload: nesting too deep")

// MaxDepth matches the nesting cap encoding/json applies to Unmarshal.
const MaxDepth = 10000

// Decode parses a single JSON document. Mapping keys keep document order; a
// repeated key keeps its first position and takes the last value.
func Decode(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, ErrEmpty
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec, 0)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("decode payload: trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("decode payload: %w", err)
	}
	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		return NumberValue(t.String()), nil
	case string:
		return StringValue(t), nil
	case json.Delim:
		if depth >= MaxDepth {
			return Value{}, ErrTooDeep
		}
		switch t {
		case '[':
			return decodeSequence(dec, depth+1)
		case '{':
			return decodeMapping(dec, depth+1)
		}
	}
	return Value{}, fmt.Errorf("decode payload: unexpected token %v", tok)
}

func decodeSequence(dec *json.Decoder, depth int) (Value, error) {
	items := []Value{}
	for dec.More() {
		item, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, fmt.Errorf("decode payload: %w", err)
	}
	return SequenceOf(items...), nil
}

func decodeMapping(dec *json.Decoder, depth int) (Value, error) {
	fields := []Field{}
	index := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, fmt.Errorf("decode payload: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("decode payload: unexpected object key %v", tok)
		}
		val, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		if i, seen := index[key]; seen {
			fields[i].Value = val
			continue
		}
		index[key] = len(fields)
		fields = append(fields, Field{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, fmt.Errorf("decode payload: %w", err)
	}
	return MappingOf(fields...), nil
}
