package protocol

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, v Value) Value {
	t.Helper()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, Encode(w, v))

	r := bufio.NewReader(&buf)
	got, err := Decode(r)
	require.NoError(t, err)
	return got
}

func TestRoundTrip(t *testing.T) {
	cases := []Value{
		SimpleString("OK"),
		Error("WRONGTYPE Operation against a key holding the wrong kind of value"),
		Integer(42),
		Integer(-7),
		Float(3.5),
		Float(3.0),
		Float(-7.0),
		Null{},
		Bulk("hello"),
		Bulk([]byte{0x80, 0x00, 0xff}),
		Bulk([]byte{}),
		Array{Bulk("a"), Bulk("b"), Integer(3)},
		Mapping{{Key: Bulk("f1"), Value: Bulk("v1")}, {Key: Bulk("f2"), Value: Integer(9)}},
		SetValue{Bulk("m1"), Bulk("m2")},
	}

	for _, c := range cases {
		got := roundTrip(t, c)
		assert.Equal(t, c, got)
	}
}

func TestDecodeIntegerWithDotIsFloat(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString(":3.14\r\n"))
	v, err := Decode(r)
	require.NoError(t, err)
	assert.Equal(t, Float(3.14), v)
}

func TestDecodeNegativeOneBulkIsNull(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString("$-1\r\n"))
	v, err := Decode(r)
	require.NoError(t, err)
	assert.Equal(t, Null{}, v)
}

func TestDecodeUnknownTagIsInline(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString("SET key1 value1\r\n"))
	v, err := Decode(r)
	require.NoError(t, err)
	inline, ok := v.(Inline)
	require.True(t, ok)
	assert.Equal(t, byte('S'), inline.Tag)
	assert.Equal(t, "SET key1 value1", string(inline.Line))
}

func TestDecodeCleanEOFBeforeFrame(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader(nil))
	_, err := Decode(r)
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeMalformedShortBulk(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString("$5\r\nhi\r\n"))
	_, err := Decode(r)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeMalformedMidArray(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString("*2\r\n$3\r\nfoo\r\n"))
	_, err := Decode(r)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeMalformedBadCount(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString("*notanumber\r\n"))
	_, err := Decode(r)
	assert.ErrorIs(t, err, ErrMalformed)
}
