// Package bridge is the guest side of the object-handle bridge.
//
// Host objects are reached through proxies. A proxy owns one positive
// handle assigned by the host; when the garbage collector reclaims the
// proxy, the handle is released exactly once:
//
//	b := bridge.New(host)
//	defer b.Close(ctx)
//
//	root, _ := b.Root(ctx)
//	w, _ := root.CallConstructor(ctx, "Widget", 1, 2)
//	size, _ := w.(*bridge.Proxy).Get(ctx, "size")
//
// # Values
//
// Arguments are encoded from nil, bool, Go integers, floats, strings and
// *Proxy. Results decode to nil, bool, int64, float64, string or *Proxy.
// Any other argument fails with an argument error that names its type.
//
// # Lifetime
//
// Release is never called by guest code. runtime.AddCleanup clears the
// proxy's handle cell and queues the handle; the queue is drained before
// every boundary call, by Flush, and by Close. A cleared cell reads as
// wire.NoHandle, which is also why a released proxy can no longer be used
// as a call target or argument.
//
// # Root Object
//
// Root caches the host's global namespace once per bridge. Install and
// RootObject expose one bridge process-wide.
package bridge
