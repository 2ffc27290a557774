package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

type ValueKind uint8

const (
	NullKind ValueKind = iota
	StringKind
	NumberKind
	BoolKind
	ObjectKind
	ListKind
)

func (k ValueKind) String() string {
	switch k {
	case NullKind:
		return "null"
	case StringKind:
		return "string"
	case NumberKind:
		return "number"
	case BoolKind:
		return "bool"
	case ObjectKind:
		return "object"
	case ListKind:
		return "list"
	default:
		return fmt.Sprintf("ValueKind(%d)", k)
	}
}

// Value is a JSON-shaped tagged union used for the free-form option maps
// (metadata, categories). The zero Value is null.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	obj  Map
	list []Value
}

// Map is a string keyed mapping of Values.
type Map map[string]Value

func NullValue() Value           { return Value{} }
func StringValue(s string) Value { return Value{kind: StringKind, str: s} }
func BoolValue(b bool) Value     { return Value{kind: BoolKind, b: b} }

// NumberValue wraps n. JSON has no NaN or infinity, so a non-finite n
// yields null; ValueOf rejects it instead.
func NumberValue(n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Value{}
	}
	return Value{kind: NumberKind, num: n}
}

func finiteNumber(n float64) (Value, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Value{}, fmt.Errorf("non-finite number %v", n)
	}
	return NumberValue(n), nil
}

func ListValue(vs ...Value) Value {
	return Value{kind: ListKind, list: append([]Value{}, vs...)}
}

func ObjectValue(m Map) Value {
	if m == nil {
		m = Map{}
	}
	return Value{kind: ObjectKind, obj: m}
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == NullKind }

func (v Value) AsString() (string, bool)  { return v.str, v.kind == StringKind }
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == NumberKind }
func (v Value) AsBool() (bool, bool)      { return v.b, v.kind == BoolKind }
func (v Value) AsObject() (Map, bool)     { return v.obj, v.kind == ObjectKind }
func (v Value) AsList() ([]Value, bool)   { return v.list, v.kind == ListKind }

// Interface converts v into the plain Go shape encoding/json produces when
// decoding into any.
func (v Value) Interface() any {
	switch v.kind {
	case StringKind:
		return v.str
	case NumberKind:
		return v.num
	case BoolKind:
		return v.b
	case ObjectKind:
		return v.obj.Interface()
	case ListKind:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// ValueOf converts a plain Go value into a Value. It accepts what
// encoding/json decodes into any, every integer and float type, and Values
// themselves. NaN and infinities are rejected.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return t, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case float64:
		return finiteNumber(t)
	case float32:
		return finiteNumber(float64(t))
	case int:
		return NumberValue(float64(t)), nil
	case int8:
		return NumberValue(float64(t)), nil
	case int16:
		return NumberValue(float64(t)), nil
	case int32:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case uint:
		return NumberValue(float64(t)), nil
	case uint8:
		return NumberValue(float64(t)), nil
	case uint16:
		return NumberValue(float64(t)), nil
	case uint32:
		return NumberValue(float64(t)), nil
	case uint64:
		return NumberValue(float64(t)), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return finiteNumber(n)
	case Map:
		return ObjectValue(t), nil
	case map[string]any:
		m, err := MapOf(t)
		if err != nil {
			return Value{}, err
		}
		return ObjectValue(m), nil
	case []Value:
		return ListValue(t...), nil
	case []any:
		list := make([]Value, 0, len(t))
		for i, item := range t {
			v, err := ValueOf(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			list = append(list, v)
		}
		return Value{kind: ListKind, list: list}, nil
	case []string:
		list := make([]Value, 0, len(t))
		for _, item := range t {
			list = append(list, StringValue(item))
		}
		return Value{kind: ListKind, list: list}, nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", x)
	}
}

// MapOf converts a decoded JSON object into a Map.
func MapOf(m map[string]any) (Map, error) {
	out := make(Map, len(m))
	for k, item := range m {
		v, err := ValueOf(item)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func (m Map) Interface() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Interface()
	}
	return out
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case NullKind:
		return []byte("null"), nil
	case StringKind:
		return json.Marshal(v.str)
	case NumberKind:
		return json.Marshal(v.num)
	case BoolKind:
		return json.Marshal(v.b)
	case ObjectKind:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(map[string]Value(v.obj))
	case ListKind:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.kind)
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var x any
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	parsed, err := ValueOf(x)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case StringKind:
		return v.str
	case ObjectKind:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+":"+v.obj[k].String())
		}
		return "{" + strings.Join(parts, " ") + "}"
	default:
		b, err := v.MarshalJSON()
		if err != nil {
			return v.kind.String()
		}
		return string(b)
	}
}
