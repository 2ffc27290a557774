package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func sampleMap() Map {
	return Map{
		"title":   StringValue("Quarterly report"),
		"limit":   NumberValue(5),
		"enabled": BoolValue(true),
		"missing": NullValue(),
		"nested": ObjectValue(Map{
			"depth": NumberValue(2),
			"tags":  ListValue(StringValue("a"), StringValue("b")),
		}),
		"empty_list": ListValue(),
	}
}

func TestValue_Accessors(t *testing.T) {
	s, ok := StringValue("x").AsString()
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = StringValue("x").AsNumber()
	assert.False(t, ok)

	n, ok := NumberValue(1.5).AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 1.5, n)

	b, ok := BoolValue(true).AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	obj, ok := ObjectValue(nil).AsObject()
	assert.True(t, ok)
	assert.NotNil(t, obj)

	list, ok := ListValue(NumberValue(1)).AsList()
	assert.True(t, ok)
	assert.Len(t, list, 1)

	assert.True(t, Value{}.IsNull())
	assert.Equal(t, NullKind, NullValue().Kind())
	assert.Equal(t, ListKind, ListValue().Kind())
	assert.Equal(t, "object", ObjectKind.String())
}

func TestValue_JSONRoundTrip(t *testing.T) {
	original := sampleMap()

	b, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Map
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, original, decoded)
}

func TestValue_MarshalShapes(t *testing.T) {
	cases := []struct {
		name string
		in   Value
		want string
	}{
		{"null", NullValue(), `null`},
		{"string", StringValue("hi"), `"hi"`},
		{"number", NumberValue(2.25), `2.25`},
		{"bool", BoolValue(false), `false`},
		{"object", ObjectValue(Map{"k": StringValue("v")}), `{"k":"v"}`},
		{"empty object", ObjectValue(nil), `{}`},
		{"list", ListValue(NumberValue(1), StringValue("two")), `[1,"two"]`},
		{"empty list", ListValue(), `[]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.in)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(b))
		})
	}
}

func TestValueOf(t *testing.T) {
	v, err := ValueOf(map[string]any{
		"count": 3,
		"ratio": float32(0.5),
		"names": []string{"x"},
		"raw":   json.Number("12"),
		"items": []any{"a", true, nil},
	})
	require.NoError(t, err)

	obj, ok := v.AsObject()
	require.True(t, ok)
	count, _ := obj["count"].AsNumber()
	assert.Equal(t, 3.0, count)
	raw, _ := obj["raw"].AsNumber()
	assert.Equal(t, 12.0, raw)
	items, _ := obj["items"].AsList()
	assert.Len(t, items, 3)
	assert.True(t, items[2].IsNull())

	_, err = ValueOf(struct{}{})
	assert.Error(t, err)

	_, err = ValueOf(map[string]any{"bad": make(chan int)})
	assert.ErrorContains(t, err, `key "bad"`)
}

func TestValueOf_EveryIntegerKind(t *testing.T) {
	for _, x := range []any{int8(-4), int16(300), uint(7), uint8(255), uint16(65535), uint32(1 << 20), uint64(1 << 40)} {
		v, err := ValueOf(x)
		require.NoError(t, err, "%T", x)
		assert.Equal(t, NumberKind, v.Kind(), "%T", x)
	}
	v, _ := ValueOf(uint8(255))
	n, _ := v.AsNumber()
	assert.Equal(t, 255.0, n)
}

func TestValue_NonFiniteNumbers(t *testing.T) {
	for _, n := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.True(t, NumberValue(n).IsNull())

		_, err := ValueOf(n)
		assert.ErrorContains(t, err, "non-finite")
	}

	f := NewFeaturesBuilder().Categories(Map{"limit": NumberValue(math.NaN())}).Build()
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"categories":{"limit":null}}`, string(b))
}

func TestValue_Interface(t *testing.T) {
	m := Map{
		"n":    NumberValue(1),
		"list": ListValue(StringValue("a")),
	}
	assert.Equal(t, map[string]any{"n": 1.0, "list": []any{"a"}}, m.Interface())
	assert.Nil(t, Map(nil).Interface())
}

func TestValue_ProtoRoundTrip(t *testing.T) {
	original := sampleMap()

	pb := original.ToProto()
	wire, err := proto.Marshal(pb)
	require.NoError(t, err)

	decodedPB := pb.ProtoReflect().New().Interface()
	require.NoError(t, proto.Unmarshal(wire, decodedPB))

	assert.True(t, proto.Equal(pb, decodedPB))
	assert.Equal(t, original, MapFromProto(pb))
	assert.True(t, ValueFromProto(nil).IsNull())
}
