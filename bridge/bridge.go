package bridge

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/wire"
)

// Host is the far side of the boundary. It owns the real objects and
// executes calls and field lookups on the bridge's behalf.
//
// Hosts report an unresolvable name with an error for which
// errors.IsLookup is true. Any other error is surfaced as a runtime error.
type Host interface {
	// Call invokes name on target, or constructs it when constructor is set.
	// A void result is wire.Null().
	Call(ctx context.Context, target wire.Handle, name string, args []wire.Value, constructor bool) (wire.Value, error)

	// GetField reads one property of target.
	GetField(ctx context.Context, target wire.Handle, name string) (wire.Value, error)

	// RootObject returns the global namespace as an object value, or null.
	RootObject(ctx context.Context) (wire.Value, error)

	// Release tells the host no guest reference to h remains. The bridge
	// calls it at most once per acquired handle.
	Release(ctx context.Context, h wire.Handle)
}

// Bridge is the guest side of the boundary: it hands out proxies, marshals
// values and releases handles of collected proxies.
//
// A Bridge assumes a single logical thread. Only the release queue, which
// the garbage collector feeds from its own goroutine, is synchronized.
type Bridge struct {
	host   Host
	logger *zap.Logger
	root   atomic.Pointer[Proxy]
	queue  *releaseQueue
	rootMu sync.Mutex

	acquired atomic.Uint64
	released atomic.Uint64
	closed   bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used by one bridge.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a bridge talking to host.
func New(host Host, opts ...Option) *Bridge {
	b := &Bridge{
		host:   host,
		logger: Logger(),
		queue:  &releaseQueue{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Host returns the host this bridge talks to.
func (b *Bridge) Host() Host {
	return b.host
}

// Stats is a snapshot of handle accounting.
type Stats struct {
	Acquired uint64 // proxies created
	Released uint64 // release calls delivered to the host
	Pending  int    // collected proxies waiting for the next boundary call
}

// Stats reports how many handles were acquired and released.
func (b *Bridge) Stats() Stats {
	return Stats{
		Acquired: b.acquired.Load(),
		Released: b.released.Load(),
		Pending:  b.queue.len(),
	}
}

// Flush delivers pending releases of collected proxies to the host.
// Every boundary call flushes first, so this is only needed when the guest
// goes idle.
func (b *Bridge) Flush(ctx context.Context) {
	b.drain(ctx)
}

// Close ends the bridge lifetime: pending releases are delivered, the cached
// root object is released and later operations fail.
func (b *Bridge) Close(ctx context.Context) error {
	if b.closed {
		return nil
	}
	b.drain(ctx)

	b.rootMu.Lock()
	if root := b.root.Swap(nil); root != nil {
		if h := root.cell.clear(); h.Valid() {
			b.release(ctx, h)
		}
	}
	b.rootMu.Unlock()

	b.queue.close()
	b.closed = true
	b.logger.Debug("bridge closed",
		zap.Uint64("acquired", b.acquired.Load()),
		zap.Uint64("released", b.released.Load()))
	return nil
}

func (b *Bridge) checkOpen(phase errors.Phase) error {
	if b.closed {
		return errors.Runtime(phase, "bridge closed", nil)
	}
	return nil
}

// hostError maps a host failure to the bridge taxonomy. Structured errors
// from the host pass through; anything else becomes a runtime error.
func (b *Bridge) hostError(phase errors.Phase, name string, err error) error {
	if errors.KindOf(err) != "" {
		return err
	}
	return errors.New(phase, errors.KindRuntime).
		Name(name).
		Detail("host call failed").
		Cause(err).
		Build()
}
