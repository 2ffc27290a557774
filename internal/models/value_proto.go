package models

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// ToProto converts v into a protobuf struct value.
func (v Value) ToProto() *structpb.Value {
	switch v.kind {
	case StringKind:
		return structpb.NewStringValue(v.str)
	case NumberKind:
		return structpb.NewNumberValue(v.num)
	case BoolKind:
		return structpb.NewBoolValue(v.b)
	case ObjectKind:
		return structpb.NewStructValue(v.obj.ToProto())
	case ListKind:
		values := make([]*structpb.Value, 0, len(v.list))
		for _, item := range v.list {
			values = append(values, item.ToProto())
		}
		return structpb.NewListValue(&structpb.ListValue{Values: values})
	default:
		return structpb.NewNullValue()
	}
}

// ValueFromProto is the inverse of ToProto. A nil input is null.
func ValueFromProto(pv *structpb.Value) Value {
	if pv == nil {
		return NullValue()
	}
	switch kind := pv.GetKind().(type) {
	case *structpb.Value_StringValue:
		return StringValue(kind.StringValue)
	case *structpb.Value_NumberValue:
		return NumberValue(kind.NumberValue)
	case *structpb.Value_BoolValue:
		return BoolValue(kind.BoolValue)
	case *structpb.Value_StructValue:
		return ObjectValue(MapFromProto(kind.StructValue))
	case *structpb.Value_ListValue:
		list := make([]Value, 0, len(kind.ListValue.GetValues()))
		for _, item := range kind.ListValue.GetValues() {
			list = append(list, ValueFromProto(item))
		}
		return Value{kind: ListKind, list: list}
	default:
		return NullValue()
	}
}

func (m Map) ToProto() *structpb.Struct {
	fields := make(map[string]*structpb.Value, len(m))
	for k, v := range m {
		fields[k] = v.ToProto()
	}
	return &structpb.Struct{Fields: fields}
}

func MapFromProto(s *structpb.Struct) Map {
	out := make(Map, len(s.GetFields()))
	for k, v := range s.GetFields() {
		out[k] = ValueFromProto(v)
	}
	return out
}
