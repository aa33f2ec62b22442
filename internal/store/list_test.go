package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListLeftRightPushPop(t *testing.T) {
	l := NewList()
	assert.Equal(t, 1, l.LeftPush(NewStringScalar("a")))
	assert.Equal(t, 2, l.RightPush(NewStringScalar("b")))
	assert.Equal(t, 2, l.Length())

	v, ok := l.LeftPop()
	assert.True(t, ok)
	assert.Equal(t, "a", v.Str)

	v, ok = l.RightPop()
	assert.True(t, ok)
	assert.Equal(t, "b", v.Str)

	_, ok = l.LeftPop()
	assert.False(t, ok)
}

func TestListValuesOrder(t *testing.T) {
	l := NewList()
	l.RightPush(NewStringScalar("a"))
	l.RightPush(NewStringScalar("b"))
	l.RightPush(NewStringScalar("c"))

	values := l.Values()
	assert.Len(t, values, 3)
	assert.Equal(t, "a", values[0].Str)
	assert.Equal(t, "c", values[2].Str)
}
