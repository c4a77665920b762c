package wire

import (
	"errors"
	"fmt"
	"math"
	"strings"

	hostbridge "github.com/wippyai/hostbridge"
)

// SlotSize is the size of one tagged value in linear memory:
//
//	[0:4]  tag (u32 LE)
//	[4:8]  reserved, zero
//	[8:16] payload: i64 integer, f64 bits, i64 handle, or string ptr u32 + len u32
const SlotSize = 16

var ErrStringContainsNull = errors.New("string contains null")

// Load reads one tagged value from the slot at ptr.
func Load(mem hostbridge.Memory, ptr uint32) (Value, error) {
	raw, err := mem.ReadU32(ptr)
	if err != nil {
		return Value{}, err
	}
	tag := Tag(raw)
	if raw > math.MaxUint8 || !tag.Valid() {
		return Value{}, fmt.Errorf("slot %#x: unknown tag %d", ptr, raw)
	}

	switch tag {
	case TagNull, TagFalse, TagTrue:
		return Value{Tag: tag}, nil
	case TagInteger:
		bits, err := mem.ReadU64(ptr + 8)
		if err != nil {
			return Value{}, err
		}
		return Int(int64(bits)), nil
	case TagFloat:
		bits, err := mem.ReadU64(ptr + 8)
		if err != nil {
			return Value{}, err
		}
		return Float(math.Float64frombits(bits)), nil
	case TagObject:
		bits, err := mem.ReadU64(ptr + 8)
		if err != nil {
			return Value{}, err
		}
		h := Handle(int64(bits))
		if !h.Valid() {
			return Value{}, fmt.Errorf("slot %#x: invalid handle %d", ptr, h)
		}
		return Object(h), nil
	case TagString:
		sptr, err := mem.ReadU32(ptr + 8)
		if err != nil {
			return Value{}, err
		}
		slen, err := mem.ReadU32(ptr + 12)
		if err != nil {
			return Value{}, err
		}
		s, err := LoadString(mem, sptr, slen)
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	}
	return Value{}, fmt.Errorf("slot %#x: unhandled tag %s", ptr, tag)
}

// LoadSlice reads n consecutive slots starting at ptr.
func LoadSlice(mem hostbridge.Memory, ptr uint32, n uint32) ([]Value, error) {
	if n == 0 {
		return nil, nil
	}
	out := make([]Value, n)
	for i := uint32(0); i < n; i++ {
		v, err := Load(mem, ptr+i*SlotSize)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// LoadString reads a length-delimited string and rejects embedded NULs.
func LoadString(mem hostbridge.Memory, ptr, length uint32) (string, error) {
	if length == 0 {
		return "", nil
	}
	data, err := mem.Read(ptr, length)
	if err != nil {
		return "", err
	}
	s := string(data)
	if strings.IndexByte(s, 0) >= 0 {
		return "", ErrStringContainsNull
	}
	return s, nil
}

// Store writes v into the slot at ptr. String bytes are copied into a fresh
// guest allocation obtained from alloc.
func Store(mem hostbridge.Memory, alloc hostbridge.Allocator, ptr uint32, v Value) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if err := mem.WriteU32(ptr, uint32(v.Tag)); err != nil {
		return err
	}
	if err := mem.WriteU32(ptr+4, 0); err != nil {
		return err
	}

	switch v.Tag {
	case TagInteger:
		return mem.WriteU64(ptr+8, uint64(v.Int))
	case TagFloat:
		return mem.WriteU64(ptr+8, math.Float64bits(v.Float))
	case TagObject:
		return mem.WriteU64(ptr+8, uint64(v.Handle))
	case TagString:
		var sptr uint32
		if len(v.Str) > 0 {
			if alloc == nil {
				return errors.New("no allocator for string payload")
			}
			if uint64(len(v.Str)) > math.MaxUint32 {
				return fmt.Errorf("string of %d bytes does not fit in guest memory", len(v.Str))
			}
			p, err := alloc.Alloc(uint32(len(v.Str)))
			if err != nil {
				return err
			}
			if err := mem.Write(p, []byte(v.Str)); err != nil {
				return err
			}
			sptr = p
		}
		if err := mem.WriteU32(ptr+8, sptr); err != nil {
			return err
		}
		return mem.WriteU32(ptr+12, uint32(len(v.Str)))
	default:
		return mem.WriteU64(ptr+8, 0)
	}
}
