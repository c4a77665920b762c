package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"
)

// flatMemory is a bounds-checked byte slice with a bump allocator.
type flatMemory struct {
	data []byte
	next uint32
}

func newFlatMemory(size int) *flatMemory {
	return &flatMemory{data: make([]byte, size), next: 1024}
}

func (m *flatMemory) check(offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(m.data)) {
		return fmt.Errorf("out of bounds: offset=%d length=%d", offset, length)
	}
	return nil
}

func (m *flatMemory) Read(offset, length uint32) ([]byte, error) {
	if err := m.check(offset, length); err != nil {
		return nil, err
	}
	return m.data[offset : offset+length], nil
}

func (m *flatMemory) Write(offset uint32, data []byte) error {
	if err := m.check(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(m.data[offset:], data)
	return nil
}

func (m *flatMemory) ReadU32(offset uint32) (uint32, error) {
	if err := m.check(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[offset:]), nil
}

func (m *flatMemory) ReadU64(offset uint32) (uint64, error) {
	if err := m.check(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.data[offset:]), nil
}

func (m *flatMemory) WriteU32(offset uint32, value uint32) error {
	if err := m.check(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[offset:], value)
	return nil
}

func (m *flatMemory) WriteU64(offset uint32, value uint64) error {
	if err := m.check(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.data[offset:], value)
	return nil
}

func (m *flatMemory) Alloc(size uint32) (uint32, error) {
	if err := m.check(m.next, size); err != nil {
		return 0, err
	}
	p := m.next
	m.next += size
	return p, nil
}

func TestSlotRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    Value
	}{
		{"null", Null()},
		{"false", Bool(false)},
		{"true", Bool(true)},
		{"integer", Int(42)},
		{"negative_integer", Int(math.MinInt64)},
		{"float", Float(3.14)},
		{"nan", Float(math.NaN())},
		{"string", String("hello")},
		{"empty_string", String("")},
		{"object", Object(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := newFlatMemory(4096)
			if err := Store(mem, mem, 64, tt.v); err != nil {
				t.Fatalf("Store failed: %v", err)
			}
			got, err := Load(mem, 64)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if !got.Equal(tt.v) {
				t.Errorf("round trip: got %v, want %v", got, tt.v)
			}
		})
	}
}

func TestSlotLayout(t *testing.T) {
	mem := newFlatMemory(4096)

	if err := Store(mem, mem, 0, Int(42)); err != nil {
		t.Fatal(err)
	}
	if tag := binary.LittleEndian.Uint32(mem.data[0:]); tag != 2 {
		t.Errorf("integer tag = %d, want 2", tag)
	}
	if v := binary.LittleEndian.Uint64(mem.data[8:]); v != 42 {
		t.Errorf("integer payload = %d, want 42", v)
	}

	if err := Store(mem, mem, 16, String("hi")); err != nil {
		t.Fatal(err)
	}
	ptr := binary.LittleEndian.Uint32(mem.data[24:])
	length := binary.LittleEndian.Uint32(mem.data[28:])
	if length != 2 || string(mem.data[ptr:ptr+length]) != "hi" {
		t.Errorf("string payload ptr=%d len=%d", ptr, length)
	}
}

func TestLoadSlice(t *testing.T) {
	mem := newFlatMemory(4096)
	in := []Value{Int(1), String("two"), Float(3)}
	for i, v := range in {
		if err := Store(mem, mem, uint32(i)*SlotSize, v); err != nil {
			t.Fatal(err)
		}
	}

	out, err := LoadSlice(mem, 0, uint32(len(in)))
	if err != nil {
		t.Fatalf("LoadSlice failed: %v", err)
	}
	for i := range in {
		if !out[i].Equal(in[i]) {
			t.Errorf("arg %d: got %v, want %v", i, out[i], in[i])
		}
	}

	none, err := LoadSlice(mem, 0, 0)
	if err != nil || none != nil {
		t.Errorf("empty slice: %v, %v", none, err)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("unknown_tag", func(t *testing.T) {
		mem := newFlatMemory(64)
		binary.LittleEndian.PutUint32(mem.data, 9)
		if _, err := Load(mem, 0); err == nil {
			t.Fatal("expected error for unknown tag")
		}
	})

	t.Run("invalid_handle", func(t *testing.T) {
		mem := newFlatMemory(64)
		binary.LittleEndian.PutUint32(mem.data, uint32(TagObject))
		if _, err := Load(mem, 0); err == nil {
			t.Fatal("expected error for zero handle")
		}
	})

	t.Run("embedded_null", func(t *testing.T) {
		mem := newFlatMemory(64)
		copy(mem.data[32:], "a\x00b")
		binary.LittleEndian.PutUint32(mem.data, uint32(TagString))
		binary.LittleEndian.PutUint32(mem.data[8:], 32)
		binary.LittleEndian.PutUint32(mem.data[12:], 3)
		if _, err := Load(mem, 0); !errors.Is(err, ErrStringContainsNull) {
			t.Fatalf("expected ErrStringContainsNull, got %v", err)
		}
	})

	t.Run("out_of_bounds", func(t *testing.T) {
		mem := newFlatMemory(16)
		if _, err := Load(mem, 8); err == nil {
			t.Fatal("expected out of bounds error")
		}
	})
}

func TestStoreRejectsInvalid(t *testing.T) {
	mem := newFlatMemory(128)
	if err := Store(mem, mem, 0, String("a\x00")); !errors.Is(err, ErrStringContainsNull) {
		t.Errorf("expected ErrStringContainsNull, got %v", err)
	}
	if err := Store(mem, mem, 0, Object(0)); err == nil {
		t.Error("expected error for zero handle")
	}
	if err := Store(mem, nil, 0, String("x")); err == nil {
		t.Error("expected error without allocator")
	}
}

func TestLoadSixTagNil(t *testing.T) {
	mem := newFlatMemory(4096)

	// A peer without TagNull writes nil as an all-zero false slot.
	binary.LittleEndian.PutUint32(mem.data[0:], uint32(TagFalse))
	v, err := Load(mem, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v.IsNull() || v.Tag != TagFalse {
		t.Errorf("zero slot loaded as %s, want false", v)
	}

	if err := Store(mem, mem, 16, Null()); err != nil {
		t.Fatal(err)
	}
	if tag := binary.LittleEndian.Uint32(mem.data[16:]); tag != 6 {
		t.Errorf("null tag = %d, want 6", tag)
	}
}
