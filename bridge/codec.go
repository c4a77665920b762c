package bridge

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/wire"
)

// Encode maps a guest value to its wire form. Supported kinds are nil,
// bool, integers, floats, strings and proxies created by this bridge.
// Named types whose underlying kind is one of those are accepted too.
func (b *Bridge) Encode(v any) (wire.Value, error) {
	switch x := v.(type) {
	case nil:
		return wire.Null(), nil
	case bool:
		return wire.Bool(x), nil
	case int:
		return wire.Int(int64(x)), nil
	case int8:
		return wire.Int(int64(x)), nil
	case int16:
		return wire.Int(int64(x)), nil
	case int32:
		return wire.Int(int64(x)), nil
	case int64:
		return wire.Int(x), nil
	case uint:
		return encodeUint(uint64(x))
	case uint8:
		return wire.Int(int64(x)), nil
	case uint16:
		return wire.Int(int64(x)), nil
	case uint32:
		return wire.Int(int64(x)), nil
	case uint64:
		return encodeUint(x)
	case float32:
		return wire.Float(float64(x)), nil
	case float64:
		return wire.Float(x), nil
	case string:
		return encodeString(x)
	case *Proxy:
		return b.encodeProxy(x)
	}
	return b.encodeReflect(v)
}

func encodeUint(u uint64) (wire.Value, error) {
	if u > math.MaxInt64 {
		return wire.Value{}, errors.New(errors.PhaseEncode, errors.KindArgument).
			GoType("uint64").
			Value(u).
			Detail("value %d overflows integer", u).
			Build()
	}
	return wire.Int(int64(u)), nil
}

func encodeString(s string) (wire.Value, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return wire.Value{}, errors.Argument(errors.PhaseEncode, wire.ErrStringContainsNull.Error())
	}
	return wire.String(s), nil
}

func (b *Bridge) encodeProxy(p *Proxy) (wire.Value, error) {
	if p == nil {
		return wire.Null(), nil
	}
	if p.bridge != b {
		return wire.Value{}, errors.Argument(errors.PhaseEncode, "object argument belongs to another bridge")
	}
	h := p.Handle()
	if !h.Valid() {
		return wire.Value{}, errors.Argument(errors.PhaseEncode, "object argument has been released")
	}
	return wire.Object(h), nil
}

func (b *Bridge) encodeReflect(v any) (wire.Value, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return wire.Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return wire.Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return encodeUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return wire.Float(rv.Float()), nil
	case reflect.String:
		return encodeString(rv.String())
	case reflect.Pointer, reflect.Struct, reflect.Interface, reflect.Map:
		return wire.Value{}, errors.New(errors.PhaseEncode, errors.KindArgument).
			GoType(fmt.Sprintf("%T", v)).
			Detail("object argument must be a bridge proxy").
			Build()
	}
	return wire.Value{}, errors.Unsupported(errors.PhaseEncode, fmt.Sprintf("%T", v))
}

// Decode maps a wire value to a guest value: nil, bool, int64, float64,
// string or a new *Proxy for object handles.
func (b *Bridge) Decode(v wire.Value) (any, error) {
	switch v.Tag {
	case wire.TagNull:
		return nil, nil
	case wire.TagFalse:
		return false, nil
	case wire.TagTrue:
		return true, nil
	case wire.TagInteger:
		return v.Int, nil
	case wire.TagFloat:
		return v.Float, nil
	case wire.TagString:
		if strings.IndexByte(v.Str, 0) >= 0 {
			return nil, errors.Argument(errors.PhaseDecode, wire.ErrStringContainsNull.Error())
		}
		return v.Str, nil
	case wire.TagObject:
		p, err := b.Acquire(v.Handle)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, errors.New(errors.PhaseDecode, errors.KindArgument).
		Value(uint8(v.Tag)).
		Detail("unknown tag %s", v.Tag).
		Build()
}
