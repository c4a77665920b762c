package objhost

import (
	"errors"
	"testing"

	"github.com/wippyai/hostbridge/wire"
)

type closer struct{ closed int }

func (c *closer) Close() error {
	c.closed++
	return nil
}

func TestTable_Basic(t *testing.T) {
	tb := NewTable()

	h, err := tb.Export("test value")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !h.Valid() {
		t.Fatalf("Expected positive handle, got %d", h)
	}

	val, ok := tb.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	if val != "test value" {
		t.Fatalf("Expected 'test value', got %v", val)
	}

	val, freed, err := tb.Release(h)
	if err != nil || !freed {
		t.Fatalf("Release: freed=%v err=%v", freed, err)
	}
	if val != "test value" {
		t.Fatalf("Expected 'test value', got %v", val)
	}

	if _, ok := tb.Get(h); ok {
		t.Fatal("Expected Get to fail after Release")
	}
}

func TestTable_InternsPointers(t *testing.T) {
	tb := NewTable()
	obj := &closer{}

	h1, _ := tb.Export(obj)
	h2, _ := tb.Export(obj)
	if h1 != h2 {
		t.Fatalf("same pointer exported as %d and %d", h1, h2)
	}
	if refs := tb.Refs(h1); refs != 2 {
		t.Fatalf("Refs = %d, want 2", refs)
	}

	if _, freed, _ := tb.Release(h1); freed {
		t.Fatal("first release must not free a shared handle")
	}
	if _, ok := tb.Get(h1); !ok {
		t.Fatal("handle should survive while referenced")
	}
	if _, freed, _ := tb.Release(h1); !freed {
		t.Fatal("second release should free")
	}

	// After freeing, the pointer gets a fresh entry.
	h3, _ := tb.Export(obj)
	if refs := tb.Refs(h3); refs != 1 {
		t.Fatalf("Refs = %d, want 1", refs)
	}
}

func TestTable_ValuesNotInterned(t *testing.T) {
	tb := NewTable()
	h1, _ := tb.Export(42)
	h2, _ := tb.Export(42)
	if h1 == h2 {
		t.Fatal("non-pointer values must get distinct handles")
	}
}

func TestTable_HandleReuse(t *testing.T) {
	tb := NewTable()

	h1, _ := tb.Export(1)
	h2, _ := tb.Export(2)
	h3, _ := tb.Export(3)

	tb.Release(h2)
	tb.Release(h1)

	h4, _ := tb.Export(4)
	h5, _ := tb.Export(5)
	if h4 != h1 || h5 != h2 {
		t.Fatalf("expected LIFO reuse of %d,%d, got %d,%d", h1, h2, h4, h5)
	}

	for _, h := range []wire.Handle{h3, h4, h5} {
		if _, ok := tb.Get(h); !ok {
			t.Fatalf("handle %d should be valid", h)
		}
	}
	if tb.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tb.Len())
	}
}

func TestTable_InvalidHandle(t *testing.T) {
	tb := NewTable()
	for _, h := range []wire.Handle{0, -1, 999} {
		if _, ok := tb.Get(h); ok {
			t.Errorf("Get(%d) should fail", h)
		}
		if _, _, err := tb.Release(h); err == nil {
			t.Errorf("Release(%d) should fail", h)
		}
		if tb.Refs(h) != 0 {
			t.Errorf("Refs(%d) should be 0", h)
		}
	}
}

func TestTable_Close(t *testing.T) {
	tb := NewTable()
	c := &closer{}
	tb.Export(c)
	tb.Export("x")

	if err := tb.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if c.closed != 1 {
		t.Fatalf("closer called %d times, want 1", c.closed)
	}
	if err := tb.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if _, err := tb.Export("y"); !errors.Is(err, ErrClosed) {
		t.Fatal("Expected ErrClosed after Close")
	}
}

func TestTable_Each(t *testing.T) {
	tb := NewTable()
	tb.Export("a")
	tb.Export("b")
	tb.Export("c")

	count := 0
	tb.Each(func(wire.Handle, any) bool {
		count++
		return true
	})
	if count != 3 {
		t.Fatalf("Expected to iterate over 3 items, got %d", count)
	}

	count = 0
	tb.Each(func(wire.Handle, any) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("Expected early termination after 1 item, got %d", count)
	}
}
