package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseEncode,
				Kind:   KindArgument,
				Name:   "foo",
				GoType: "[]int",
				Detail: "cannot marshal",
			},
			contains: []string{"[encode]", "argument", "at foo", "[]int", "cannot marshal"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindArgument,
			},
			contains: []string{"[decode]", "argument"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseHost,
				Kind:   KindRuntime,
				Detail: "memory full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[host]", "runtime", "memory full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseCall,
		Kind:  KindRuntime,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindArgument,
		Name:  "foo",
	}

	if !err.Is(&Error{Phase: PhaseEncode, Kind: KindArgument}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindArgument}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseEncode, Kind: KindLookup}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseEncode, Kind: KindArgument}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseCall, KindLookup).
		Name("foo").
		GoType("string").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "string", "int").
		Build()

	if err.Phase != PhaseCall {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseCall)
	}
	if err.Kind != KindLookup {
		t.Errorf("Kind = %v, want %v", err.Kind, KindLookup)
	}
	if err.Name != "foo" {
		t.Errorf("Name = %v, want foo", err.Name)
	}
	if err.GoType != "string" {
		t.Errorf("GoType = %v, want 'string'", err.GoType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected string, got int" {
		t.Errorf("Detail = %v, want 'expected string, got int'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("InvalidHandle", func(t *testing.T) {
		err := InvalidHandle(-3)
		if err.Kind != KindArgument || err.Phase != PhaseLifecycle {
			t.Errorf("got %s/%s", err.Phase, err.Kind)
		}
		if err.Value != int64(-3) {
			t.Errorf("Value = %v, want -3", err.Value)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseEncode, "map[string]int")
		if err.Kind != KindArgument {
			t.Errorf("Kind = %v, want %v", err.Kind, KindArgument)
		}
		if !strings.Contains(err.Error(), "map[string]int") {
			t.Errorf("message %q should name the type", err.Error())
		}
	})

	t.Run("MissingName", func(t *testing.T) {
		err := MissingName(PhaseField)
		if err.Detail != "field name not provided" {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("TooManyArguments", func(t *testing.T) {
		err := TooManyArguments(PhaseCall, 17, 16)
		if !strings.Contains(err.Detail, "limit=16") {
			t.Errorf("Detail = %q, should cite limit", err.Detail)
		}
		if err.Value != 17 {
			t.Errorf("Value = %v, want 17", err.Value)
		}
	})

	t.Run("Lookup", func(t *testing.T) {
		err := Lookup(PhaseCall, "nope", nil)
		if err.Kind != KindLookup || err.Name != "nope" {
			t.Errorf("got %+v", err)
		}
	})

	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(PhaseEncode, 1024)
		if err.Kind != KindRuntime {
			t.Errorf("Kind = %v, want %v", err.Kind, KindRuntime)
		}
		if !strings.Contains(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
	})
}

func TestKindPredicates(t *testing.T) {
	wrapped := fmt.Errorf("dispatch: %w", Lookup(PhaseCall, "x", nil))

	if !IsLookup(wrapped) {
		t.Error("IsLookup should see through wrapping")
	}
	if IsArgument(wrapped) || IsRuntime(wrapped) {
		t.Error("lookup error matched another kind")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("plain errors have no kind")
	}
	if !IsArgument(MissingName(PhaseCall)) {
		t.Error("IsArgument should match")
	}
	if !IsRuntime(Runtime(PhaseHost, "boom", nil)) {
		t.Error("IsRuntime should match")
	}
}
