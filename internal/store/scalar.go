package store

import (
	"fmt"
	"strconv"
)

// ScalarKind tags the four alternatives a STRING entry's payload can
// take, preserved verbatim from whatever the client sent.
type ScalarKind uint8

const (
	ScalarBytes ScalarKind = iota
	ScalarString
	ScalarInt
	ScalarFloat
)

// Scalar is the STRING datatype's payload: exactly one of a raw byte
// string, a UTF-8 string, an integer or a float.
type Scalar struct {
	Kind  ScalarKind
	Bytes []byte
	Str   string
	Int   int64
	Float float64
}

func NewBytesScalar(b []byte) Scalar  { return Scalar{Kind: ScalarBytes, Bytes: b} }
func NewStringScalar(s string) Scalar { return Scalar{Kind: ScalarString, Str: s} }
func NewIntScalar(n int64) Scalar     { return Scalar{Kind: ScalarInt, Int: n} }
func NewFloatScalar(f float64) Scalar { return Scalar{Kind: ScalarFloat, Float: f} }

// dedupeKey is a canonical string used to detect duplicate members in
// a Set: two scalars collide iff their kind and content match exactly
// (no numeric/string coercion — "3" and 3 are distinct members).
func (s Scalar) dedupeKey() string {
	switch s.Kind {
	case ScalarBytes:
		return "b:" + string(s.Bytes)
	case ScalarString:
		return "s:" + s.Str
	case ScalarInt:
		return "i:" + strconv.FormatInt(s.Int, 10)
	case ScalarFloat:
		return "f:" + strconv.FormatFloat(s.Float, 'g', -1, 64)
	default:
		return fmt.Sprintf("?:%v", s)
	}
}
