package wasmhost

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	hostbridge "github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/wire"
)

// Status is the i32 result of every bridge import.
type Status uint32

const (
	StatusOK       Status = 0
	StatusArgument Status = 1
	StatusLookup   Status = 2
	StatusRuntime  Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusArgument:
		return "argument error"
	case StatusLookup:
		return "lookup error"
	case StatusRuntime:
		return "runtime error"
	}
	return "unknown"
}

// StatusOf maps an error to the status reported to the guest. Errors that
// carry no kind are runtime errors.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	switch errors.KindOf(err) {
	case errors.KindArgument:
		return StatusArgument
	case errors.KindLookup:
		return StatusLookup
	}
	return StatusRuntime
}

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

// Exports serves a bridge.Host to wasm guests through the import module.
// A guest drives it from one goroutine; it keeps the message of the last
// failed call for last_error.
type Exports struct {
	host    bridge.Host
	cfg     Config
	logger  *zap.Logger
	lastErr error
}

// Option configures Exports.
type Option func(*Exports)

// WithLogger sets the logger used by one host module.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exports) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExports validates cfg and prepares the import functions for host.
func NewExports(host bridge.Host, cfg Config, opts ...Option) (*Exports, error) {
	if host == nil {
		return nil, errors.Argument(errors.PhaseLoad, "host is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Load("invalid config", err)
	}
	e := &Exports{host: host, cfg: cfg, logger: Logger()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Instantiate registers the import module in r. Guests instantiated in r
// afterwards can import it.
func Instantiate(ctx context.Context, r wazero.Runtime, host bridge.Host, cfg Config, opts ...Option) (*Exports, api.Module, error) {
	e, err := NewExports(host, cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	mod, err := e.Instantiate(ctx, r)
	if err != nil {
		return nil, nil, err
	}
	return e, mod, nil
}

// Instantiate builds and instantiates the host module in r.
func (e *Exports) Instantiate(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	builder := r.NewHostModuleBuilder(e.cfg.ModuleName)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.call),
			[]api.ValueType{i64, i32, i32, i32, i32, i32, i32}, []api.ValueType{i32}).
		WithParameterNames("handle", "name_ptr", "name_len", "argv_ptr", "argc", "ret_ptr", "constructor").
		Export("call")

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.getField),
			[]api.ValueType{i64, i32, i32, i32}, []api.ValueType{i32}).
		WithParameterNames("handle", "name_ptr", "name_len", "ret_ptr").
		Export("get_field")

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.getRootObject),
			[]api.ValueType{i32}, []api.ValueType{i32}).
		WithParameterNames("ret_ptr").
		Export("get_root_object")

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.releaseObject),
			[]api.ValueType{i64}, nil).
		WithParameterNames("handle").
		Export("release_object")

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.lastError),
			[]api.ValueType{i32}, []api.ValueType{i32}).
		WithParameterNames("ret_ptr").
		Export("last_error")

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Load("instantiate host module "+e.cfg.ModuleName, err)
	}
	e.logger.Debug("host module instantiated", zap.String("module", e.cfg.ModuleName))
	return mod, nil
}

// LastError returns the error behind the most recent non-zero status.
func (e *Exports) LastError() error {
	return e.lastErr
}

func (e *Exports) call(ctx context.Context, mod api.Module, stack []uint64) {
	target := wire.Handle(int64(stack[0]))
	namePtr, nameLen := api.DecodeU32(stack[1]), api.DecodeU32(stack[2])
	argv, argc := api.DecodeU32(stack[3]), api.DecodeU32(stack[4])
	retPtr := api.DecodeU32(stack[5])
	constructor := api.DecodeU32(stack[6]) != 0

	stack[0] = uint64(e.finish("call", func() error {
		mem, err := e.memory(mod)
		if err != nil {
			return err
		}
		if !target.Valid() {
			return errors.InvalidHandle(int64(target))
		}
		name, err := e.name(mem, namePtr, nameLen)
		if err != nil {
			return err
		}
		args, err := wire.LoadSlice(mem, argv, argc)
		if err != nil {
			return errors.New(errors.PhaseDecode, errors.KindArgument).
				Name(name).
				Detail("read arguments").
				Cause(err).
				Build()
		}

		e.logger.Debug("guest call",
			zap.Int64("target", int64(target)),
			zap.String("name", name),
			zap.Uint32("argc", argc),
			zap.Bool("constructor", constructor))

		v, err := e.host.Call(ctx, target, name, args, constructor)
		if err != nil {
			return err
		}
		return e.storeResult(ctx, mod, mem, retPtr, v)
	}))
}

func (e *Exports) getField(ctx context.Context, mod api.Module, stack []uint64) {
	target := wire.Handle(int64(stack[0]))
	namePtr, nameLen := api.DecodeU32(stack[1]), api.DecodeU32(stack[2])
	retPtr := api.DecodeU32(stack[3])

	stack[0] = uint64(e.finish("get_field", func() error {
		mem, err := e.memory(mod)
		if err != nil {
			return err
		}
		if !target.Valid() {
			return errors.InvalidHandle(int64(target))
		}
		name, err := e.name(mem, namePtr, nameLen)
		if err != nil {
			return err
		}
		v, err := e.host.GetField(ctx, target, name)
		if err != nil {
			return err
		}
		return e.storeResult(ctx, mod, mem, retPtr, v)
	}))
}

func (e *Exports) getRootObject(ctx context.Context, mod api.Module, stack []uint64) {
	retPtr := api.DecodeU32(stack[0])

	stack[0] = uint64(e.finish("get_root_object", func() error {
		mem, err := e.memory(mod)
		if err != nil {
			return err
		}
		v, err := e.host.RootObject(ctx)
		if err != nil {
			return err
		}
		if v.Tag != wire.TagObject && v.Tag != wire.TagNull {
			return errors.New(errors.PhaseHost, errors.KindRuntime).
				Detail("root object is %s", v).
				Build()
		}
		return e.storeResult(ctx, mod, mem, retPtr, v)
	}))
}

func (e *Exports) releaseObject(ctx context.Context, _ api.Module, stack []uint64) {
	h := wire.Handle(int64(stack[0]))
	if !h.Valid() {
		e.logger.Warn("guest released invalid handle", zap.Int64("handle", int64(h)))
		return
	}
	e.host.Release(ctx, h)
}

func (e *Exports) lastError(ctx context.Context, mod api.Module, stack []uint64) {
	retPtr := api.DecodeU32(stack[0])

	mem, err := e.memory(mod)
	if err == nil {
		v := wire.Null()
		if e.lastErr != nil {
			v = wire.String(strings.ReplaceAll(e.lastErr.Error(), "\x00", ""))
		}
		err = e.store(ctx, mod, mem, retPtr, v)
	}
	stack[0] = uint64(StatusOf(err))
}

// storeResult writes a host answer to the guest. When the write fails the
// guest never sees an object result, so the reference the host took for
// it is dropped here.
func (e *Exports) storeResult(ctx context.Context, mod api.Module, mem hostbridge.Memory, retPtr uint32, v wire.Value) error {
	err := e.store(ctx, mod, mem, retPtr, v)
	if err != nil && v.Tag == wire.TagObject && v.Handle.Valid() {
		e.logger.Debug("dropping undelivered result", zap.Int64("handle", int64(v.Handle)))
		e.host.Release(ctx, v.Handle)
	}
	return err
}

// finish runs op, records its error and converts it to a status.
func (e *Exports) finish(fn string, op func() error) Status {
	err := op()
	e.lastErr = err
	status := StatusOf(err)
	if err != nil {
		e.logger.Debug("guest call failed",
			zap.String("function", fn),
			zap.Stringer("status", status),
			zap.Error(err))
	}
	return status
}

func (e *Exports) memory(mod api.Module) (hostbridge.Memory, error) {
	mem := wrapMemory(mod.Memory())
	if mem == nil {
		return nil, errors.Runtime(errors.PhaseHost, "guest exports no memory", nil)
	}
	return mem, nil
}

func (e *Exports) name(mem hostbridge.Memory, ptr, length uint32) (string, error) {
	name, err := wire.LoadString(mem, ptr, length)
	if err != nil {
		if stderrors.Is(err, wire.ErrStringContainsNull) {
			return "", errors.Argument(errors.PhaseDecode, "string contains null")
		}
		return "", errors.New(errors.PhaseDecode, errors.KindArgument).
			Detail("read name").
			Cause(err).
			Build()
	}
	if name == "" {
		return "", errors.MissingName(errors.PhaseDecode)
	}
	return name, nil
}

func (e *Exports) store(ctx context.Context, mod api.Module, mem hostbridge.Memory, ptr uint32, v wire.Value) error {
	alloc := &allocator{ctx: ctx, fn: mod.ExportedFunction(e.cfg.AllocExport)}
	if err := wire.Store(mem, alloc, ptr, v); err != nil {
		if errors.KindOf(err) != "" {
			return err
		}
		return errors.Runtime(errors.PhaseEncode, "store result", err)
	}
	return nil
}
