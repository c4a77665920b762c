package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in the bridge the error occurred
type Phase string

const (
	PhaseEncode    Phase = "encode"    // guest value to wire
	PhaseDecode    Phase = "decode"    // wire to guest value
	PhaseCall      Phase = "call"      // method/constructor dispatch
	PhaseField     Phase = "field"     // field lookup
	PhaseLifecycle Phase = "lifecycle" // handle acquire/release
	PhaseHost      Phase = "host"      // host-side execution
	PhaseLoad      Phase = "load"      // module loading
)

// Kind categorizes the error
type Kind string

const (
	// KindArgument covers invalid handles, unsupported argument kinds,
	// foreign object arguments, missing names, embedded NULs and arity limits.
	KindArgument Kind = "argument"
	// KindRuntime covers allocation failures and failed host execution.
	KindRuntime Kind = "runtime"
	// KindLookup is a host-side name resolution failure.
	KindLookup Kind = "lookup"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Name   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Name != "" {
		b.WriteString(" at ")
		b.WriteString(e.Name)
	}

	if e.GoType != "" {
		b.WriteString(": Go type ")
		b.WriteString(e.GoType)
	}

	if e.Detail != "" {
		if e.GoType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Name sets the method or field name involved
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Argument creates an argument error
func Argument(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArgument,
		Detail: detail,
	}
}

// InvalidHandle creates the error for a non-positive handle
func InvalidHandle(handle int64) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindArgument,
		Detail: "no valid handle is provided",
		Value:  handle,
	}
}

// Unsupported creates the error for a guest value kind the codec cannot marshal
func Unsupported(phase Phase, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArgument,
		GoType: goType,
		Detail: fmt.Sprintf("type %s is not supported by the bridge", goType),
	}
}

// MissingName creates the error for an empty method or field name
func MissingName(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArgument,
		Detail: "field name not provided",
	}
}

// TooManyArguments creates the error for exceeding a fixed argument buffer
func TooManyArguments(phase Phase, argc, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArgument,
		Detail: fmt.Sprintf("too many arguments (limit=%d)", limit),
		Value:  argc,
	}
}

// Lookup creates a host-side name resolution error
func Lookup(phase Phase, name string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLookup,
		Name:   name,
		Detail: "cannot locate function to call",
		Cause:  cause,
	}
}

// Runtime creates a runtime error
func Runtime(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRuntime,
		Detail: detail,
		Cause:  cause,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRuntime,
		Detail: fmt.Sprintf("cannot allocate %d bytes", size),
		Value:  size,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindRuntime,
		Detail: detail,
		Cause:  cause,
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsArgument reports whether err is an argument error in any phase
func IsArgument(err error) bool { return KindOf(err) == KindArgument }

// IsLookup reports whether err is a lookup error in any phase
func IsLookup(err error) bool { return KindOf(err) == KindLookup }

// IsRuntime reports whether err is a runtime error in any phase
func IsRuntime(err error) bool { return KindOf(err) == KindRuntime }
