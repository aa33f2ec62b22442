// Package snapshot persists and restores an Engine's full state to a
// single local file. The on-disk format is opaque to callers
// (encoding/gob) but must round-trip every scalar kind, including raw
// non-UTF-8 byte strings, and carry the expiry map.
package snapshot

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keepd/keepd/internal/store"
)

func init() {
	gob.Register(store.Scalar{})
}

// payload is the top-level shape written to disk.
type payload struct {
	Entries []store.SnapshotEntry
}

// Save writes the engine's current state to path, replacing any
// existing file. The write goes to a temporary file in the same
// directory and is atomically renamed into place on success, so a
// crash mid-write cannot corrupt the existing snapshot.
func Save(e *store.Engine, path string) error {
	entries := e.Export()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrIO, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	enc := gob.NewEncoder(tmp)
	if err := enc.Encode(payload{Entries: entries}); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", store.ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", store.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: %v", store.ErrIO, err)
	}
	return nil
}

// Restore loads path into e, replacing its entire state on success. A
// missing file is reported via the bool return (false, nil error)
// rather than as an error, since "no snapshot yet" is routine; any
// other failure is wrapped as ErrIO.
func Restore(e *store.Engine, path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", store.ErrIO, err)
	}
	defer f.Close()

	var p payload
	dec := gob.NewDecoder(f)
	if err := dec.Decode(&p); err != nil {
		return false, fmt.Errorf("%w: %v", store.ErrIO, err)
	}

	e.Import(p.Entries)
	return true, nil
}
