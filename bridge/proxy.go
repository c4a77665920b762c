package bridge

import (
	"context"
	"strconv"

	"github.com/wippyai/hostbridge/wire"
)

// Proxy stands in for one host object. It holds exactly one handle, which
// is released when the proxy becomes unreachable. There is no manual
// release; keep the proxy reachable for as long as the host object is
// needed.
type Proxy struct {
	bridge *Bridge
	cell   *handleCell
}

// Handle returns the handle this proxy owns, or wire.NoHandle once the
// handle has been released.
func (p *Proxy) Handle() wire.Handle {
	return p.cell.load()
}

// Bridge returns the bridge that created p.
func (p *Proxy) Bridge() *Bridge {
	return p.bridge
}

// Call invokes method name on the host object.
func (p *Proxy) Call(ctx context.Context, name string, args ...any) (any, error) {
	return p.bridge.Call(ctx, p, name, args, false)
}

// CallConstructor constructs name, resolved on the host object, with args.
func (p *Proxy) CallConstructor(ctx context.Context, name string, args ...any) (any, error) {
	return p.bridge.Call(ctx, p, name, args, true)
}

// Get reads field name of the host object.
func (p *Proxy) Get(ctx context.Context, name string) (any, error) {
	return p.bridge.Get(ctx, p, name)
}

func (p *Proxy) String() string {
	return "#<Proxy handle=" + strconv.FormatInt(int64(p.Handle()), 10) + ">"
}
