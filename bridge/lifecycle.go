package bridge

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/wire"
)

// handleCell is the storage a proxy owns. Clearing it to wire.NoHandle is
// the double-release guard: only the caller that observes the old positive
// value may release it.
type handleCell struct {
	h atomic.Int64
}

func (c *handleCell) load() wire.Handle {
	return wire.Handle(c.h.Load())
}

func (c *handleCell) clear() wire.Handle {
	return wire.Handle(c.h.Swap(int64(wire.NoHandle)))
}

// releaseQueue collects handles of proxies reclaimed by the garbage
// collector. Cleanups run on a runtime goroutine, so they only enqueue;
// the bridge drains the queue on its own goroutine.
type releaseQueue struct {
	handles []wire.Handle
	mu      sync.Mutex
	closed  bool
}

func (q *releaseQueue) push(h wire.Handle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.handles = append(q.handles, h)
}

func (q *releaseQueue) take() []wire.Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.handles
	q.handles = nil
	return out
}

func (q *releaseQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.handles)
}

func (q *releaseQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.handles = nil
}

// Acquire wraps a host-assigned handle in a new proxy. The proxy owns the
// handle exclusively; acquiring the same handle twice yields two proxies
// that each release once. Handles <= 0 are rejected.
func (b *Bridge) Acquire(h wire.Handle) (*Proxy, error) {
	if err := b.checkOpen(errors.PhaseLifecycle); err != nil {
		return nil, err
	}
	if !h.Valid() {
		return nil, errors.InvalidHandle(int64(h))
	}

	p := &Proxy{bridge: b, cell: &handleCell{}}
	p.cell.h.Store(int64(h))

	q := b.queue
	runtime.AddCleanup(p, func(c *handleCell) {
		if old := c.clear(); old.Valid() {
			q.push(old)
		}
	}, p.cell)

	b.acquired.Add(1)
	b.logger.Debug("acquire", zap.Int64("handle", int64(h)))
	return p, nil
}

// drain releases every queued handle. It runs at the start of each
// boundary call so releases never overlap an in-flight host call.
func (b *Bridge) drain(ctx context.Context) {
	for _, h := range b.queue.take() {
		b.release(ctx, h)
	}
}

func (b *Bridge) release(ctx context.Context, h wire.Handle) {
	b.host.Release(ctx, h)
	b.released.Add(1)
	b.logger.Debug("release", zap.Int64("handle", int64(h)))
}
