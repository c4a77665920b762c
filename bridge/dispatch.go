package bridge

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/wire"
)

// MaxFuncallArgs is the capacity of the fixed argument buffer used by
// Funcall.
const MaxFuncallArgs = 16

// Call invokes name on the object behind p, or constructs it when
// constructor is set. The flag is forwarded to the host untouched; the
// marshaling path is the same either way. There is no limit on len(args).
func (b *Bridge) Call(ctx context.Context, p *Proxy, name string, args []any, constructor bool) (any, error) {
	if err := b.checkOpen(errors.PhaseCall); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.MissingName(errors.PhaseCall)
	}
	b.drain(ctx)
	target, err := b.target(p)
	if err != nil {
		return nil, err
	}

	wargs := make([]wire.Value, len(args))
	if err := b.encodeArgs(name, args, wargs); err != nil {
		return nil, err
	}
	ret, err := b.invoke(ctx, target, name, wargs, constructor)
	// Handles read from p and args must stay owned until the host returns.
	runtime.KeepAlive(p)
	runtime.KeepAlive(args)
	return ret, err
}

// Get reads field name of the object behind p.
func (b *Bridge) Get(ctx context.Context, p *Proxy, name string) (any, error) {
	if err := b.checkOpen(errors.PhaseField); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.MissingName(errors.PhaseField)
	}
	b.drain(ctx)
	target, err := b.target(p)
	if err != nil {
		return nil, err
	}

	ret, err := b.host.GetField(ctx, target, name)
	runtime.KeepAlive(p)
	if err != nil {
		return nil, b.hostError(errors.PhaseField, name, err)
	}
	b.logger.Debug("get",
		zap.Int64("target", int64(target)),
		zap.String("name", name),
		zap.Stringer("result", ret))
	return b.Decode(ret)
}

// Funcall calls function name on the root object with at most
// MaxFuncallArgs arguments, marshaled through a fixed-size buffer.
func (b *Bridge) Funcall(ctx context.Context, name string, args ...any) (any, error) {
	if err := b.checkOpen(errors.PhaseCall); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.MissingName(errors.PhaseCall)
	}
	if len(args) > MaxFuncallArgs {
		return nil, errors.TooManyArguments(errors.PhaseCall, len(args), MaxFuncallArgs)
	}
	b.drain(ctx)

	var buf [MaxFuncallArgs]wire.Value
	wargs := buf[:len(args)]
	if err := b.encodeArgs(name, args, wargs); err != nil {
		return nil, err
	}
	root, err := b.rootTarget(ctx)
	if err != nil {
		return nil, err
	}
	ret, err := b.invoke(ctx, root, name, wargs, false)
	runtime.KeepAlive(args)
	return ret, err
}

// FuncallArgs is Funcall without the argument limit.
func (b *Bridge) FuncallArgs(ctx context.Context, name string, args []any) (any, error) {
	if err := b.checkOpen(errors.PhaseCall); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.MissingName(errors.PhaseCall)
	}
	b.drain(ctx)

	wargs := make([]wire.Value, len(args))
	if err := b.encodeArgs(name, args, wargs); err != nil {
		return nil, err
	}
	root, err := b.rootTarget(ctx)
	if err != nil {
		return nil, err
	}
	ret, err := b.invoke(ctx, root, name, wargs, false)
	runtime.KeepAlive(args)
	return ret, err
}

func (b *Bridge) rootTarget(ctx context.Context) (wire.Handle, error) {
	root, err := b.Root(ctx)
	if err != nil {
		return wire.NoHandle, err
	}
	if root == nil {
		return wire.NoHandle, errors.Runtime(errors.PhaseCall, "host has no root object", nil)
	}
	return root.Handle(), nil
}

// target validates that p is a live proxy of this bridge.
func (b *Bridge) target(p *Proxy) (wire.Handle, error) {
	if p == nil {
		return wire.NoHandle, errors.Argument(errors.PhaseCall, "nil proxy")
	}
	if p.bridge != b {
		return wire.NoHandle, errors.Argument(errors.PhaseCall, "proxy belongs to another bridge")
	}
	h := p.Handle()
	if !h.Valid() {
		return wire.NoHandle, errors.Argument(errors.PhaseCall, "cannot get handle value")
	}
	return h, nil
}

// encodeArgs fills out with the wire form of args. len(out) must equal
// len(args).
func (b *Bridge) encodeArgs(name string, args []any, out []wire.Value) error {
	for i, a := range args {
		v, err := b.Encode(a)
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				e.Name = name
				e.Detail = fmt.Sprintf("argument %d: %s", i, e.Detail)
			}
			return err
		}
		out[i] = v
	}
	return nil
}

// invoke sends one call to the host. Callers drain the release queue
// before reading any handle they pass here.
func (b *Bridge) invoke(ctx context.Context, target wire.Handle, name string, args []wire.Value, constructor bool) (any, error) {
	ret, err := b.host.Call(ctx, target, name, args, constructor)
	if err != nil {
		return nil, b.hostError(errors.PhaseCall, name, err)
	}
	b.logger.Debug("call",
		zap.Int64("target", int64(target)),
		zap.String("name", name),
		zap.Int("argc", len(args)),
		zap.Bool("constructor", constructor),
		zap.Stringer("result", ret))
	return b.Decode(ret)
}
