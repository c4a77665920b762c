// Package hostbridge lets guest code hold and manipulate proxies for
// host-side objects it cannot otherwise represent.
//
// A host object is known to the guest only by an opaque positive handle.
// The bridge wraps each handle in a proxy, marshals a fixed set of value
// kinds across the boundary and releases the handle exactly once when the
// proxy is garbage collected.
//
// # Architecture Overview
//
//	hostbridge/          Root package with the guest Memory and Allocator interfaces
//	├── wire/            Wire tags, tagged values and the linear-memory slot layout
//	├── bridge/          Guest side: proxies, codec, dispatcher, root cache
//	├── objhost/         In-process host: Go values behind a handle table
//	├── wasmhost/        The host verbs as a wazero import module for wasm guests
//	├── errors/          Structured error types
//	├── cmd/run/         Demo CLI and interactive object browser
//	└── examples/basic/  Minimal bridge walkthrough
//
// # Quick Start
//
//	host := objhost.New()
//	host.Define("greet", func(name string) string { return "Hello, " + name })
//
//	b := bridge.New(host)
//	defer b.Close(ctx)
//
//	result, err := b.Funcall(ctx, "greet", "World")
//	fmt.Println(result) // "Hello, World"
//
// # Value Kinds
//
// Only nil, bool, integers, floats, strings and *bridge.Proxy cross the
// boundary. Wire ordinals are fixed:
//
//	0 false  1 true  2 integer  3 float  4 object  5 string  6 null
//
// # Thread Safety
//
// The bridge assumes one logical thread shared by guest and host. Bridge,
// objhost.Host and objhost.Table must not be used from several goroutines
// at once. Garbage-collector cleanups only enqueue releases; the queue is
// drained on the caller's goroutine at the next boundary call.
package hostbridge
