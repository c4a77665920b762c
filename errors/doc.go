// Package errors provides structured error types for the host bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The three kinds mirror what guest code can observe:
//
//	KindArgument  invalid handle, unsupported value, missing name, arity limit
//	KindRuntime   allocation failure or failed host execution
//	KindLookup    host could not resolve the requested name
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindArgument).
//		GoType("[]int").
//		Detail("type %s is not supported", "[]int").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MissingName(errors.PhaseCall)
//	err := errors.TooManyArguments(errors.PhaseCall, 17, 16)
//
// All errors implement the standard error interface and support errors.Is/As.
// IsArgument, IsLookup and IsRuntime match on kind regardless of phase.
package errors
