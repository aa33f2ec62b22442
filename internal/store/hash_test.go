package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashSetGet(t *testing.T) {
	h := NewHash()
	assert.True(t, h.Set("f1", NewStringScalar("v1")))
	assert.False(t, h.Set("f1", NewStringScalar("v2"))) // replace reports false

	v, ok := h.Get("f1")
	assert.True(t, ok)
	assert.Equal(t, "v2", v.Str)

	_, ok = h.Get("missing")
	assert.False(t, ok)
}

func TestHashAllIsSnapshot(t *testing.T) {
	h := NewHash()
	h.Set("a", NewStringScalar("1"))
	h.Set("b", NewStringScalar("2"))

	all := h.All()
	assert.Len(t, all, 2)

	h.Set("c", NewStringScalar("3"))
	assert.Len(t, all, 2) // snapshot unaffected by later writes
}
