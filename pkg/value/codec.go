package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// FromGo converts plain Go data into a Value. Numbers and booleans become
// numbers, strings become character vectors, and slices become arrays
// built with FromCells.
func FromGo(x any) (Value, error) {
	switch t := x.(type) {
	case Value:
		return t, nil
	case *Array:
		return FromArray(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t, err)
		}
		return Number(f), nil
	case bool:
		if t {
			return Number(1), nil
		}
		return Number(0), nil
	case string:
		return Text(t), nil
	case []float64:
		return FromArray(FromNumbers(t...)), nil
	case []string:
		cells := make([]Value, len(t))
		for i, s := range t {
			cells[i] = Text(s)
		}
		return FromArray(FromCells(cells)), nil
	case []any:
		cells := make([]Value, len(t))
		for i, item := range t {
			c, err := FromGo(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			cells[i] = c
		}
		return FromArray(FromCells(cells)), nil
	case nil:
		return Value{}, fmt.Errorf("cannot convert null to a value")
	default:
		return Value{}, fmt.Errorf("unsupported type: %T", x)
	}
}

// ToGo converts v into plain Go data: float64 for numbers, string for
// characters and character vectors, and nested []any for other arrays.
func ToGo(v Value) any {
	return toGo(v, false)
}

func toGo(v Value, jsonSafe bool) any {
	switch v.kind {
	case KindNumber:
		if jsonSafe && (math.IsNaN(v.num) || math.IsInf(v.num, 0)) {
			return FormatNumber(v.num)
		}
		return v.num
	case KindChar:
		return string(v.char)
	}
	a := v.arr
	if a.Rank() == 0 {
		return toGo(a.Element(0), jsonSafe)
	}
	return a.nest(0, 0, a.IsChars(), jsonSafe)
}

// nest converts the sub-array at flat offset off along axis. Rows of
// character arrays become strings.
func (a *Array) nest(axis, off int, chars, jsonSafe bool) any {
	n := a.shape[axis]
	if axis == a.Rank()-1 {
		if chars {
			runes := make([]rune, n)
			for i := range runes {
				runes[i] = a.values[off+i].char
			}
			return string(runes)
		}
		out := make([]any, n)
		for i := range out {
			out[i] = toGo(a.Element(off+i), jsonSafe)
		}
		return out
	}
	stride := a.shape[axis+1:].ElementCount()
	out := make([]any, n)
	for i := range out {
		out[i] = a.nest(axis+1, off+i*stride, chars, jsonSafe)
	}
	return out
}

// MarshalJSON encodes v as nested JSON lists. Non-finite numbers are
// encoded as their display strings.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(toGo(v, true))
}

// UnmarshalJSON decodes any JSON number, string or list into v. The
// strings MarshalJSON writes for non-finite numbers ("NaN", "∞", "¯∞")
// decode back to numbers, so text with exactly those contents cannot be
// carried through JSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out, err := FromGo(nonFinite(raw))
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// nonFinite replaces the display strings of non-finite numbers in decoded
// JSON with the numbers themselves.
func nonFinite(raw any) any {
	switch x := raw.(type) {
	case string:
		switch x {
		case "NaN":
			return math.NaN()
		case "∞":
			return math.Inf(1)
		case "¯∞":
			return math.Inf(-1)
		}
	case []any:
		for i, item := range x {
			x[i] = nonFinite(item)
		}
	}
	return raw
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return ToGo(v), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	out, err := FromGo(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = out
	return nil
}

// DecodeYAML reads a single YAML document as a Value.
func DecodeYAML(r io.Reader) (Value, error) {
	var v Value
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		return Value{}, fmt.Errorf("failed to decode value: %w", err)
	}
	return v, nil
}
