package wire

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tag is the discriminant of a tagged value. Ordinals are a wire contract
// shared with every host and must never be renumbered.
type Tag uint8

const (
	TagFalse   Tag = 0
	TagTrue    Tag = 1
	TagInteger Tag = 2
	TagFloat   Tag = 3
	TagObject  Tag = 4
	TagString  Tag = 5
	TagNull    Tag = 6 // extension; six-tag peers send nil as TagFalse
)

var tagNames = [...]string{
	TagFalse:   "false",
	TagTrue:    "true",
	TagInteger: "integer",
	TagFloat:   "float",
	TagObject:  "object",
	TagString:  "string",
	TagNull:    "null",
}

// Valid reports whether t is a known tag.
func (t Tag) Valid() bool {
	return int(t) < len(tagNames)
}

func (t Tag) String() string {
	if t.Valid() {
		return tagNames[t]
	}
	return "tag(" + strconv.Itoa(int(t)) + ")"
}

// Handle identifies a host-side object. Valid handles are positive; zero is
// the "no handle" sentinel and negative values are always invalid.
type Handle int64

// NoHandle is the sentinel stored in a cleared handle cell.
const NoHandle Handle = 0

// Valid reports whether h can refer to a host object.
func (h Handle) Valid() bool { return h > 0 }

// Value is a tagged value crossing the boundary. Only the payload field
// matching Tag is meaningful.
type Value struct {
	Str    string
	Int    int64
	Float  float64
	Handle Handle
	Tag    Tag
}

func Null() Value { return Value{Tag: TagNull} }

func Int(v int64) Value { return Value{Tag: TagInteger, Int: v} }

func Float(v float64) Value { return Value{Tag: TagFloat, Float: v} }

func String(v string) Value { return Value{Tag: TagString, Str: v} }

func Object(h Handle) Value { return Value{Tag: TagObject, Handle: h} }

func (v Value) IsNull() bool { return v.Tag == TagNull }

func (v Value) IsObject() bool { return v.Tag == TagObject }

// Bool returns the True or False tagged value.
func Bool(v bool) Value {
	if v {
		return Value{Tag: TagTrue}
	}
	return Value{Tag: TagFalse}
}

// Validate checks that the tag is known, object handles are positive and
// strings carry no NUL byte.
func (v Value) Validate() error {
	switch v.Tag {
	case TagNull, TagFalse, TagTrue, TagInteger, TagFloat:
		return nil
	case TagObject:
		if !v.Handle.Valid() {
			return fmt.Errorf("object value with invalid handle %d", v.Handle)
		}
		return nil
	case TagString:
		if strings.IndexByte(v.Str, 0) >= 0 {
			return ErrStringContainsNull
		}
		return nil
	default:
		return fmt.Errorf("unknown tag %d", v.Tag)
	}
}

// Equal compares two values by tag and payload. NaN floats compare equal
// to each other so round trips of NaN hold.
func (v Value) Equal(o Value) bool {
	if v.Tag != o.Tag {
		return false
	}
	switch v.Tag {
	case TagInteger:
		return v.Int == o.Int
	case TagFloat:
		return v.Float == o.Float || (math.IsNaN(v.Float) && math.IsNaN(o.Float))
	case TagString:
		return v.Str == o.Str
	case TagObject:
		return v.Handle == o.Handle
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.Tag {
	case TagInteger:
		return "integer(" + strconv.FormatInt(v.Int, 10) + ")"
	case TagFloat:
		return "float(" + strconv.FormatFloat(v.Float, 'g', -1, 64) + ")"
	case TagString:
		return "string(" + strconv.Quote(v.Str) + ")"
	case TagObject:
		return "object(#" + strconv.FormatInt(int64(v.Handle), 10) + ")"
	default:
		return v.Tag.String()
	}
}
