package store

import (
	"maps"
	"sync"
)

// Hash is a mapping from byte-string field to scalar, unordered,
// unique fields.
type Hash struct {
	fields map[string]Scalar
	mutex  sync.RWMutex
}

func NewHash() *Hash {
	return &Hash{fields: make(map[string]Scalar)}
}

// Set stores field regardless of prior presence and reports whether
// field was newly added. HSET itself always reports 1 at the command
// layer, but the container still distinguishes new-vs-replace for
// callers that want it, e.g. tests.
func (h *Hash) Set(field string, value Scalar) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	_, exists := h.fields[field]
	h.fields[field] = value
	return !exists
}

func (h *Hash) Get(field string) (Scalar, bool) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	v, exists := h.fields[field]
	return v, exists
}

func (h *Hash) Len() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.fields)
}

// All returns a snapshot copy of every field, used by the snapshot
// manager.
func (h *Hash) All() map[string]Scalar {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	out := make(map[string]Scalar, len(h.fields))
	maps.Copy(out, h.fields)
	return out
}
