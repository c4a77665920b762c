// Package wasmhost exposes a bridge.Host to WebAssembly guests as a wazero
// host module.
//
// A guest runtime compiled to wasm (an embedded scripting interpreter, for
// example) imports five functions from the module, "bridge" by default:
//
//	call(handle i64, name_ptr i32, name_len i32, argv_ptr i32, argc i32, ret_ptr i32, constructor i32) -> status i32
//	get_field(handle i64, name_ptr i32, name_len i32, ret_ptr i32) -> status i32
//	get_root_object(ret_ptr i32) -> status i32
//	release_object(handle i64)
//	last_error(ret_ptr i32) -> status i32
//
// Arguments and results are 16-byte slots in the layout of wire.SlotSize.
// String results are copied into guest memory through the guest's exported
// allocator, "bridge_alloc" (size i32) -> ptr i32 by default.
//
// Status codes:
//
//	0  ok
//	1  argument error
//	2  lookup error
//	3  runtime error
//
// Usage:
//
//	rt, _ := wasmhost.NewRuntime(ctx, wasmhost.DefaultConfig())
//	_, _, err := wasmhost.Instantiate(ctx, rt, objhost.New(), wasmhost.DefaultConfig())
//	mod, err := rt.Instantiate(ctx, guestWasm)
package wasmhost
