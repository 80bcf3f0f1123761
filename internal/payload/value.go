// Package payload models webhook response bodies whose shape is not known in
// advance. Values form a tagged union over the JSON kinds and mappings keep
// their keys in document order.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies which member of the union a Value holds.
type Kind int

// Value kinds.
const (
	Null Kind = iota
	Bool
	Number
	String
	Sequence
	Mapping
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Field is one key/value entry of a Mapping.
type Field struct {
	Key   string
	Value Value
}

// Value is a decoded JSON value. The zero Value is Null.
type Value struct {
	kind   Kind
	b      bool
	text   string // string contents or the literal number text
	items  []Value
	fields []Field
}

// NullValue returns the JSON null.
func NullValue() Value { return Value{} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue wraps a number literal such as "42" or "1.5e3".
func NumberValue(literal string) Value { return Value{kind: Number, text: literal} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, text: s} }

// SequenceOf builds a Sequence from items.
func SequenceOf(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: Sequence, items: items}
}

// MappingOf builds a Mapping from fields, in the given order.
func MappingOf(fields ...Field) Value {
	if fields == nil {
		fields = []Field{}
	}
	return Value{kind: Mapping, fields: fields}
}

// Kind reports the union member held by v.
func (v Value) Kind() Kind { return v.kind }

// IsSequence reports whether v is a Sequence.
func (v Value) IsSequence() bool { return v.kind == Sequence }

// IsMapping reports whether v is a Mapping.
func (v Value) IsMapping() bool { return v.kind == Mapping }

// Items returns the elements of a Sequence, or nil for other kinds.
func (v Value) Items() []Value {
	if v.kind != Sequence {
		return nil
	}
	return v.items
}

// Fields returns the entries of a Mapping in document order, or nil for other kinds.
func (v Value) Fields() []Field {
	if v.kind != Mapping {
		return nil
	}
	return v.fields
}

// Get looks up key in a Mapping.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Mapping {
		return Value{}, false
	}
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Truthy applies the loose truthiness used by the automation workflows:
// null, false, zero and the empty string are false, everything else is true.
func (v Value) Truthy() bool {
	switch v.kind {
	case Null:
		return false
	case Bool:
		return v.b
	case Number:
		f, err := strconv.ParseFloat(v.text, 64)
		return err != nil || f != 0
	case String:
		return v.text != ""
	default:
		return true
	}
}

// Text renders a scalar as text. Strings are returned verbatim, numbers keep
// their literal form, and sequences/mappings are rendered as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case String, Number:
		return v.text
	case Bool:
		return strconv.FormatBool(v.b)
	case Null:
		return ""
	default:
		data, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// String implements fmt.Stringer with the JSON encoding of v.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(data)
}

// MarshalJSON re-encodes v, preserving mapping key order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	case Number:
		buf.WriteString(v.text)
	case String:
		data, err := json.Marshal(v.text)
		if err != nil {
			return fmt.Errorf("encode string: %w", err)
		}
		buf.Write(data)
	case Sequence:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Mapping:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Key)
			if err != nil {
				return fmt.Errorf("encode key: %w", err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := f.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown value kind %d", v.kind)
	}
	return nil
}
