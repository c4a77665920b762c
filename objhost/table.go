package objhost

import (
	"errors"
	"io"
	"reflect"

	"github.com/wippyai/hostbridge/wire"
)

var ErrClosed = errors.New("object table closed")

// Table maps positive handles to host values with per-handle reference
// counts. Pointer values are interned: exporting the same pointer twice
// returns the same handle with two references.
//
// Table is not safe for concurrent use.
type Table struct {
	entries  []entry
	freeList []wire.Handle
	index    map[any]wire.Handle
	closed   bool
}

type entry struct {
	value any
	refs  uint32
	valid bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:  make([]entry, 0, 64),
		freeList: make([]wire.Handle, 0, 16),
		index:    make(map[any]wire.Handle),
	}
}

// Export takes one reference to v and returns its handle.
func (t *Table) Export(v any) (wire.Handle, error) {
	if t.closed {
		return wire.NoHandle, ErrClosed
	}

	key, interned := internKey(v)
	if interned {
		if h, ok := t.index[key]; ok {
			t.entries[h-1].refs++
			return h, nil
		}
	}

	e := entry{value: v, refs: 1, valid: true}

	var h wire.Handle
	if len(t.freeList) > 0 {
		h = t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		t.entries[h-1] = e
	} else {
		t.entries = append(t.entries, e)
		h = wire.Handle(len(t.entries))
	}

	if interned {
		t.index[key] = h
	}
	return h, nil
}

func internKey(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	if reflect.TypeOf(v).Kind() == reflect.Pointer {
		return v, true
	}
	return nil, false
}

func (t *Table) lookup(h wire.Handle) *entry {
	if !h.Valid() || int64(h) > int64(len(t.entries)) {
		return nil
	}
	e := &t.entries[h-1]
	if !e.valid {
		return nil
	}
	return e
}

// Get retrieves a value by handle.
func (t *Table) Get(h wire.Handle) (any, bool) {
	e := t.lookup(h)
	if e == nil {
		return nil, false
	}
	return e.value, true
}

// Refs returns the reference count of h, or 0 if h is not live.
func (t *Table) Refs(h wire.Handle) uint32 {
	e := t.lookup(h)
	if e == nil {
		return 0
	}
	return e.refs
}

// Release drops one reference to h. It returns the value and true when
// the last reference went away and the slot was freed.
func (t *Table) Release(h wire.Handle) (any, bool, error) {
	e := t.lookup(h)
	if e == nil {
		return nil, false, errors.New("unknown handle")
	}

	e.refs--
	if e.refs > 0 {
		return nil, false, nil
	}

	value := e.value
	if key, interned := internKey(value); interned {
		delete(t.index, key)
	}
	e.valid = false
	e.value = nil
	t.freeList = append(t.freeList, h)
	return value, true, nil
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	count := 0
	for _, e := range t.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Each iterates over live handles until fn returns false.
func (t *Table) Each(fn func(wire.Handle, any) bool) {
	for i, e := range t.entries {
		if e.valid {
			if !fn(wire.Handle(i+1), e.value) {
				break
			}
		}
	}
}

// Close frees every handle. Values implementing io.Closer are closed.
func (t *Table) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	var errs []error
	for i := range t.entries {
		if t.entries[i].valid {
			if c, ok := t.entries[i].value.(io.Closer); ok {
				if err := c.Close(); err != nil {
					errs = append(errs, err)
				}
			}
			t.entries[i].valid = false
			t.entries[i].value = nil
		}
	}

	t.entries = nil
	t.freeList = nil
	t.index = nil
	return errors.Join(errs...)
}
