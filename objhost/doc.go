// Package objhost is an in-process host for the bridge.
//
// Objects live in a Table keyed by positive handles. The global Namespace
// is exported as the root object; members may be functions, *Class values
// (constructed with CallConstructor), nested namespaces, or any Go value,
// whose exported methods and fields become callable and readable:
//
//	h := objhost.New()
//	h.Define("Widget", objhost.NewClass("Widget", NewWidget))
//	h.Define("version", "1.2.0")
//
// Results that are not primitives are exported as new references. Pointer
// values are interned, so returning the same pointer twice reuses its
// handle and bumps its reference count; Release drops one reference and
// frees the slot at zero.
package objhost
