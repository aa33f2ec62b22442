package store

import "time"

// SnapshotEntry is the gob-friendly flattened form of one key's Entry
// plus its pending deadline, used only at the engine/snapshot boundary
// (internal/snapshot encodes/decodes slices of these). Keeping this
// shape out of Entry itself lets the live containers stay
// mutex-guarded structs while the snapshot format stays a plain value.
type SnapshotEntry struct {
	Key      string
	Type     DataType
	String   Scalar
	Hash     map[string]Scalar
	List     []Scalar
	Set      []Scalar
	Deadline int64 // unix nanoseconds; 0 means no TTL
	HasTTL   bool
}

// Export produces a point-in-time copy of every live entry, suitable
// for handing to the snapshot manager's Save. A fresh sweep runs first
// so the snapshot never contains already-expired keys.
func (e *Engine) Export() []SnapshotEntry {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.sweep("", time.Now())

	out := make([]SnapshotEntry, 0, len(e.entries))
	for key, entry := range e.entries {
		se := SnapshotEntry{Key: key, Type: entry.Type}
		switch entry.Type {
		case TypeString:
			se.String = entry.String
		case TypeHash:
			se.Hash = entry.Hash.All()
		case TypeList:
			se.List = entry.List.Values()
		case TypeSet:
			se.Set = entry.Set.Members()
		}
		if d, ok := e.expiry.deadline(key); ok {
			se.HasTTL = true
			se.Deadline = d.UnixNano()
		}
		out = append(out, se)
	}
	return out
}

// Import replaces the entire key-space and expiry index with the
// contents of entries, as used by RESTORE. Deadlines already in the
// past become candidates for the next lazy sweep rather than being
// filtered out here.
func (e *Engine) Import(entries []SnapshotEntry) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	fresh := make(map[string]*Entry, len(entries))
	expiry := newExpiryTracker()

	for _, se := range entries {
		entry := &Entry{Type: se.Type}
		switch se.Type {
		case TypeString:
			entry.String = se.String
		case TypeHash:
			h := NewHash()
			for field, v := range se.Hash {
				h.Set(field, v)
			}
			entry.Hash = h
		case TypeList:
			l := NewList()
			for _, v := range se.List {
				l.RightPush(v)
			}
			entry.List = l
		case TypeSet:
			s := NewSet()
			for _, v := range se.Set {
				s.Add(v)
			}
			entry.Set = s
		}
		fresh[se.Key] = entry
		if se.HasTTL {
			expiry.set(se.Key, time.Unix(0, se.Deadline))
		}
	}

	e.entries = fresh
	e.expiry = expiry
}
