package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepd/keepd/internal/store"
)

func TestSaveRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.db")

	e := store.NewEngine()
	e.Set("k1", store.NewStringScalar("v1"))
	e.Set("kbin", store.NewBytesScalar([]byte{0x80, 0x00, 0xff}))
	_, err := e.LPush("L", store.NewStringScalar("a"), store.NewStringScalar("b"))
	require.NoError(t, err)
	_, err = e.SAdd("S", store.NewStringScalar("x"))
	require.NoError(t, err)
	_, err = e.HSet("H", "f", store.NewStringScalar("v"))
	require.NoError(t, err)

	require.NoError(t, Save(e, path))

	e.FlushAll()
	_, ok, err := e.Get("k1")
	require.NoError(t, err)
	require.False(t, ok)

	restored, err := Restore(e, path)
	require.NoError(t, err)
	assert.True(t, restored)

	v, ok, err := e.Get("k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", v.Str)

	v, ok, err = e.Get("kbin")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{0x80, 0x00, 0xff}, v.Bytes)

	popped, ok, err := e.LPop("L")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", popped.Str)
}

func TestRestoreMissingFileReturnsFalse(t *testing.T) {
	e := store.NewEngine()
	ok, err := Restore(e, filepath.Join(t.TempDir(), "nope.db"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveOverwritesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.db")

	e := store.NewEngine()
	e.Set("a", store.NewStringScalar("1"))
	require.NoError(t, Save(e, path))

	e.Set("b", store.NewStringScalar("2"))
	require.NoError(t, Save(e, path))

	e2 := store.NewEngine()
	ok, err := Restore(e2, path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, e2.Keys())
}
