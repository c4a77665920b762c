package wasmhost

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	hostbridge "github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/errors"
)

// wrapMemory adapts wazero memory to hostbridge.Memory.
func wrapMemory(mem api.Memory) hostbridge.Memory {
	if mem == nil {
		return nil
	}
	return &memory{mem: mem}
}

type memory struct {
	mem api.Memory
}

func (m *memory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("memory read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (m *memory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("memory write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (m *memory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

func (m *memory) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

func (m *memory) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}

func (m *memory) WriteU64(offset uint32, value uint64) error {
	if !m.mem.WriteUint64Le(offset, value) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}

// allocator calls the guest's allocation export.
type allocator struct {
	ctx context.Context
	fn  api.Function
}

func (a *allocator) Alloc(size uint32) (uint32, error) {
	if a.fn == nil {
		return 0, errors.AllocationFailed(errors.PhaseHost, size)
	}
	results, err := a.fn.Call(a.ctx, uint64(size))
	if err != nil {
		return 0, errors.New(errors.PhaseHost, errors.KindRuntime).
			Value(size).
			Detail("guest allocation failed").
			Cause(err).
			Build()
	}
	if len(results) == 0 || uint32(results[0]) == 0 {
		return 0, errors.AllocationFailed(errors.PhaseHost, size)
	}
	return uint32(results[0]), nil
}
