// Package protocol implements the tagged, length-prefixed wire format
// spoken between keepd and its clients: a recursive algebra of simple
// strings, errors, integers, floats, bulk byte strings, arrays, maps
// and sets, each frame starting with a single tag byte and CRLF-
// delimited per line. The package is a pure codec: it knows nothing
// about commands or connections.
package protocol

import "fmt"

// Value is the closed algebra of things that can cross the wire in
// either direction. Every concrete type below implements it.
type Value interface {
	isValue()
}

// SimpleString is a `+` frame: a one-line status string such as "OK".
type SimpleString string

func (SimpleString) isValue() {}

// Error is a `-` frame: a one-line error message.
type Error string

func (Error) isValue() {}

func (e Error) Error() string { return string(e) }

// Integer is a `:` frame without a decimal point.
type Integer int64

func (Integer) isValue() {}

// Float is a `:` frame containing a decimal point.
type Float float64

func (Float) isValue() {}

// Bulk is a `$` frame: a length-prefixed byte string. A present-but-
// empty string is Bulk{} (len 0), never nil.
type Bulk []byte

func (Bulk) isValue() {}

// Null is a `$` frame with length -1.
type Null struct{}

func (Null) isValue() {}

// Array is a `*` frame: an ordered, possibly heterogeneous sequence of
// nested frames.
type Array []Value

func (Array) isValue() {}

// Pair is one key/value entry of a Mapping, in wire order.
type Pair struct {
	Key   Value
	Value Value
}

// Mapping is a `%` frame: count pairs, then 2*count nested frames.
type Mapping []Pair

func (Mapping) isValue() {}

// SetValue is a `&` frame: count nested frames, unordered by contract
// though this implementation preserves decode order.
type SetValue []Value

func (SetValue) isValue() {}

// Inline is produced when the leading byte of a frame is not one of
// the known tags. It carries the raw tag byte and the rest of the
// line verbatim, letting a netcat-style plain-text prompt fall back
// to a whitespace-tokenized command.
type Inline struct {
	Tag  byte
	Line []byte
}

func (Inline) isValue() {}

// OK is the canonical simple-string status response.
func OK() Value { return SimpleString("OK") }

// Errorf builds an Error value from a format string.
func Errorf(format string, args ...any) Value {
	return Error(fmt.Sprintf(format, args...))
}
