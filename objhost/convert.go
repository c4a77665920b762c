package objhost

import (
	"fmt"
	"math"
	"reflect"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/wire"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// toGo converts a wire value into a reflect.Value assignable to t.
func (h *Host) toGo(v wire.Value, t reflect.Type, idx int) (reflect.Value, error) {
	mismatch := func() error {
		return errors.New(errors.PhaseHost, errors.KindArgument).
			GoType(t.String()).
			Detail("argument %d: cannot use %s", idx, v).
			Build()
	}

	switch v.Tag {
	case wire.TagNull:
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, mismatch()

	case wire.TagFalse, wire.TagTrue:
		b := v.Tag == wire.TagTrue
		if t.Kind() == reflect.Bool {
			return reflect.ValueOf(b).Convert(t), nil
		}
		if t.Kind() == reflect.Interface {
			return reflect.ValueOf(b), nil
		}
		return reflect.Value{}, mismatch()

	case wire.TagInteger:
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			rv := reflect.New(t).Elem()
			if rv.OverflowInt(v.Int) {
				return reflect.Value{}, mismatch()
			}
			rv.SetInt(v.Int)
			return rv, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			rv := reflect.New(t).Elem()
			if v.Int < 0 || rv.OverflowUint(uint64(v.Int)) {
				return reflect.Value{}, mismatch()
			}
			rv.SetUint(uint64(v.Int))
			return rv, nil
		case reflect.Float32, reflect.Float64:
			return reflect.ValueOf(float64(v.Int)).Convert(t), nil
		case reflect.Interface:
			return reflect.ValueOf(v.Int), nil
		}
		return reflect.Value{}, mismatch()

	case wire.TagFloat:
		switch t.Kind() {
		case reflect.Float32, reflect.Float64:
			return reflect.ValueOf(v.Float).Convert(t), nil
		case reflect.Interface:
			return reflect.ValueOf(v.Float), nil
		}
		return reflect.Value{}, mismatch()

	case wire.TagString:
		if t.Kind() == reflect.String {
			return reflect.ValueOf(v.Str).Convert(t), nil
		}
		if t.Kind() == reflect.Interface {
			return reflect.ValueOf(v.Str), nil
		}
		return reflect.Value{}, mismatch()

	case wire.TagObject:
		obj, ok := h.table.Get(v.Handle)
		if !ok {
			return reflect.Value{}, errors.New(errors.PhaseHost, errors.KindArgument).
				Value(int64(v.Handle)).
				Detail("argument %d: unknown handle %d", idx, v.Handle).
				Build()
		}
		rv := reflect.ValueOf(obj)
		if rv.Type().AssignableTo(t) {
			return rv, nil
		}
		return reflect.Value{}, mismatch()
	}
	return reflect.Value{}, mismatch()
}

// toWire converts a Go value into a wire value, exporting anything that is
// not a primitive as a new object reference.
func (h *Host) toWire(v any) (wire.Value, error) {
	if v == nil {
		return wire.Null(), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return wire.Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return wire.Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return wire.Value{}, errors.Runtime(errors.PhaseHost, fmt.Sprintf("result %d overflows integer", u), nil)
		}
		return wire.Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return wire.Float(rv.Float()), nil
	case reflect.String:
		return wire.String(rv.String()), nil
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if rv.IsNil() {
			return wire.Null(), nil
		}
	}

	handle, err := h.table.Export(v)
	if err != nil {
		return wire.Value{}, errors.Runtime(errors.PhaseHost, "export object", err)
	}
	return wire.Object(handle), nil
}

// invoke calls fn with wire arguments and converts its results. Supported
// result shapes are (), (T), (error) and (T, error).
func (h *Host) invoke(name string, fn reflect.Value, args []wire.Value) (ret wire.Value, err error) {
	ft := fn.Type()

	nin := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < nin-1 {
			return wire.Value{}, arity(name, len(args), nin-1, true)
		}
	} else if len(args) != nin {
		return wire.Value{}, arity(name, len(args), nin, false)
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= nin-1 {
			pt = ft.In(nin - 1).Elem()
		} else {
			pt = ft.In(i)
		}
		rv, err := h.toGo(a, pt, i)
		if err != nil {
			return wire.Value{}, err
		}
		in[i] = rv
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.PhaseHost, errors.KindRuntime).
				Name(name).
				Detail("host function panicked: %v", r).
				Build()
		}
	}()
	out := fn.Call(in)

	if n := len(out); n > 0 && ft.Out(n-1) == errorType {
		if e, _ := out[n-1].Interface().(error); e != nil {
			return wire.Value{}, errors.New(errors.PhaseHost, errors.KindRuntime).
				Name(name).
				Detail("host function failed").
				Cause(e).
				Build()
		}
		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return wire.Null(), nil
	case 1:
		return h.toWire(out[0].Interface())
	}
	return wire.Value{}, errors.New(errors.PhaseHost, errors.KindRuntime).
		Name(name).
		Detail("host function returns %d values", len(out)).
		Build()
}

func arity(name string, got, want int, variadic bool) error {
	atLeast := ""
	if variadic {
		atLeast = "at least "
	}
	return errors.New(errors.PhaseHost, errors.KindArgument).
		Name(name).
		Value(got).
		Detail("wrong number of arguments (given %d, expected %s%d)", got, atLeast, want).
		Build()
}
