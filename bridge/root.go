package bridge

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/wire"
)

// Root returns the proxy for the host's global namespace. The first
// successful lookup is cached for the rest of the bridge lifetime, so
// repeated calls return the same proxy without a round trip. A host that
// answers null yields (nil, nil) and is asked again next time.
func (b *Bridge) Root(ctx context.Context) (*Proxy, error) {
	if p := b.root.Load(); p != nil {
		return p, nil
	}
	if err := b.checkOpen(errors.PhaseCall); err != nil {
		return nil, err
	}

	b.rootMu.Lock()
	defer b.rootMu.Unlock()

	if p := b.root.Load(); p != nil {
		return p, nil
	}

	b.drain(ctx)
	v, err := b.host.RootObject(ctx)
	if err != nil {
		return nil, b.hostError(errors.PhaseCall, "", err)
	}

	switch v.Tag {
	case wire.TagNull:
		return nil, nil
	case wire.TagObject:
		p, err := b.Acquire(v.Handle)
		if err != nil {
			return nil, err
		}
		b.root.Store(p)
		return p, nil
	}
	return nil, errors.New(errors.PhaseDecode, errors.KindArgument).
		Value(uint8(v.Tag)).
		Detail("root object must be an object, got %s", v.Tag).
		Build()
}

var (
	defaultBridge atomic.Pointer[Bridge]
	installOnce   sync.Once
)

// Install makes b the process-wide bridge used by Default and RootObject.
// Only the first call takes effect.
func Install(b *Bridge) error {
	if b == nil {
		return errors.Argument(errors.PhaseLifecycle, "nil bridge")
	}
	installed := false
	installOnce.Do(func() {
		defaultBridge.Store(b)
		installed = true
	})
	if !installed {
		return errors.Runtime(errors.PhaseLifecycle, "bridge already installed", nil)
	}
	return nil
}

// Default returns the installed bridge, or nil.
func Default() *Bridge {
	return defaultBridge.Load()
}

// RootObject returns the cached root object of the installed bridge.
func RootObject(ctx context.Context) (*Proxy, error) {
	b := Default()
	if b == nil {
		return nil, errors.Runtime(errors.PhaseLifecycle, "bridge not installed", nil)
	}
	return b.Root(ctx)
}
