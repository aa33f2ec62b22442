package server

import (
	"fmt"

	"github.com/keepd/keepd/internal/protocol"
	"github.com/keepd/keepd/internal/store"
)

// valueToScalar converts a decoded protocol value into the store's
// scalar representation, preserving which wire alternative the client
// chose as it flows through unchanged.
func valueToScalar(v protocol.Value) (store.Scalar, error) {
	switch val := v.(type) {
	case protocol.Bulk:
		return store.NewBytesScalar([]byte(val)), nil
	case protocol.SimpleString:
		return store.NewStringScalar(string(val)), nil
	case protocol.Integer:
		return store.NewIntScalar(int64(val)), nil
	case protocol.Float:
		return store.NewFloatScalar(float64(val)), nil
	default:
		return store.Scalar{}, fmt.Errorf("value of this type cannot be stored")
	}
}

// scalarToValue is valueToScalar's inverse, used to encode a stored
// scalar back onto the wire.
func scalarToValue(s store.Scalar) protocol.Value {
	switch s.Kind {
	case store.ScalarBytes:
		return protocol.Bulk(s.Bytes)
	case store.ScalarString:
		return protocol.SimpleString(s.Str)
	case store.ScalarInt:
		return protocol.Integer(s.Int)
	case store.ScalarFloat:
		return protocol.Float(s.Float)
	default:
		return protocol.Null{}
	}
}

// argBytes extracts the raw bytes of a request argument, regardless of
// whether the client sent it as a bulk string, a simple string, or
// (via inline fallback) a whitespace token.
func argBytes(v protocol.Value) ([]byte, error) {
	switch val := v.(type) {
	case protocol.Bulk:
		return []byte(val), nil
	case protocol.SimpleString:
		return []byte(val), nil
	default:
		return nil, fmt.Errorf("expected a string argument")
	}
}

func argString(v protocol.Value) (string, error) {
	b, err := argBytes(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
