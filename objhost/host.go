package objhost

import (
	"context"
	"reflect"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/wire"
)

var _ bridge.Host = (*Host)(nil)

// Host is an in-process object world. Namespaces, classes, functions and
// arbitrary Go values are reachable by handle; methods and fields of Go
// values are resolved by reflection, with lower-case guest names mapped to
// exported Go names ("size" finds Size).
//
// Host is not safe for concurrent use.
type Host struct {
	table  *Table
	global *Namespace
	logger *zap.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger used by one host.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithGlobal replaces the global namespace. A nil namespace makes
// RootObject answer null.
func WithGlobal(ns *Namespace) Option {
	return func(h *Host) {
		h.global = ns
	}
}

// New creates a host with an empty global namespace.
func New(opts ...Option) *Host {
	h := &Host{
		table:  NewTable(),
		global: NewNamespace(),
		logger: Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Global returns the namespace exposed as the root object.
func (h *Host) Global() *Namespace {
	return h.global
}

// Table returns the handle table.
func (h *Host) Table() *Table {
	return h.table
}

// Define sets a member of the global namespace.
func (h *Host) Define(name string, v any) {
	if h.global == nil {
		h.global = NewNamespace()
	}
	h.global.Set(name, v)
}

// Close frees every outstanding handle.
func (h *Host) Close() error {
	return h.table.Close()
}

// RootObject exports the global namespace.
func (h *Host) RootObject(context.Context) (wire.Value, error) {
	if h.global == nil {
		return wire.Null(), nil
	}
	return h.toWire(h.global)
}

// GetField reads member name of the object behind target.
func (h *Host) GetField(_ context.Context, target wire.Handle, name string) (wire.Value, error) {
	obj, err := h.object(target)
	if err != nil {
		return wire.Value{}, err
	}
	v, ok := member(obj, name)
	if !ok {
		return wire.Value{}, errors.New(errors.PhaseHost, errors.KindLookup).
			Name(name).
			Detail("no field %q on %T", name, obj).
			Build()
	}
	return h.toWire(v)
}

// Call invokes or constructs member name of the object behind target.
func (h *Host) Call(_ context.Context, target wire.Handle, name string, args []wire.Value, constructor bool) (wire.Value, error) {
	obj, err := h.object(target)
	if err != nil {
		return wire.Value{}, err
	}
	m, ok := member(obj, name)
	if !ok {
		return wire.Value{}, errors.Lookup(errors.PhaseHost, name, nil)
	}

	h.logger.Debug("call",
		zap.Int64("target", int64(target)),
		zap.String("name", name),
		zap.Int("argc", len(args)),
		zap.Bool("constructor", constructor))

	if cls, ok := m.(*Class); ok {
		if !constructor {
			return wire.Value{}, errors.New(errors.PhaseHost, errors.KindRuntime).
				Name(name).
				Detail("class %s must be called as a constructor", cls.Name).
				Build()
		}
		ctor := reflect.ValueOf(cls.New)
		if ctor.Kind() != reflect.Func {
			return wire.Value{}, errors.New(errors.PhaseHost, errors.KindRuntime).
				Name(name).
				Detail("class %s has no constructor", cls.Name).
				Build()
		}
		return h.invoke(name, ctor, args)
	}

	if constructor {
		return wire.Value{}, errors.New(errors.PhaseHost, errors.KindRuntime).
			Name(name).
			Detail("%s is not a constructor", name).
			Build()
	}

	fn := reflect.ValueOf(m)
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return wire.Value{}, errors.Lookup(errors.PhaseHost, name, nil)
	}
	return h.invoke(name, fn, args)
}

// Release drops the guest's reference to handle. Unknown handles are
// logged and ignored.
func (h *Host) Release(_ context.Context, handle wire.Handle) {
	v, freed, err := h.table.Release(handle)
	if err != nil {
		h.logger.Warn("release of unknown handle", zap.Int64("handle", int64(handle)))
		return
	}
	h.logger.Debug("release",
		zap.Int64("handle", int64(handle)),
		zap.Bool("freed", freed))
	if c, ok := v.(interface{ Close() error }); ok && freed {
		if err := c.Close(); err != nil {
			h.logger.Warn("close released object", zap.Int64("handle", int64(handle)), zap.Error(err))
		}
	}
}

func (h *Host) object(target wire.Handle) (any, error) {
	obj, ok := h.table.Get(target)
	if !ok {
		return nil, errors.New(errors.PhaseHost, errors.KindArgument).
			Value(int64(target)).
			Detail("unknown handle %d", target).
			Build()
	}
	return obj, nil
}

// member resolves name on obj: namespace members, string-keyed map
// entries, methods, then struct fields.
func member(obj any, name string) (any, bool) {
	if ns, ok := obj.(*Namespace); ok {
		return ns.Lookup(name)
	}

	rv := reflect.ValueOf(obj)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		e := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !e.IsValid() {
			return nil, false
		}
		return e.Interface(), true
	}

	goName := exportedName(name)
	if goName == "" {
		return nil, false
	}
	if m := rv.MethodByName(goName); m.IsValid() {
		return m.Interface(), true
	}

	sv := rv
	if sv.Kind() == reflect.Pointer && !sv.IsNil() {
		sv = sv.Elem()
	}
	if sv.Kind() == reflect.Struct {
		if f, ok := sv.Type().FieldByName(goName); ok && f.IsExported() {
			fv, err := sv.FieldByIndexErr(f.Index)
			if err != nil {
				return nil, false
			}
			return fv.Interface(), true
		}
	}
	return nil, false
}

// exportedName upper-cases the first rune: "size" -> "Size".
func exportedName(name string) string {
	r, n := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r)) + name[n:]
}
