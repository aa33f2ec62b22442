package store

import (
	"fmt"
	"sync"
	"time"
)

// Engine is the typed key-space: keyed entries plus the expiry index,
// guarded by a single mutex so that every command executes as if
// atomically with respect to every other command. One coarse lock is
// simpler to reason about than fine-grained per-container locking and
// satisfies the serialized-execution contract directly.
type Engine struct {
	mutex   sync.Mutex
	entries map[string]*Entry
	expiry  *expiryTracker
}

func NewEngine() *Engine {
	return &Engine{
		entries: make(map[string]*Entry),
		expiry:  newExpiryTracker(),
	}
}

// sweep performs the lazy global sweep (heap entries with deadline <=
// now) and then the per-key check for key. Caller must hold e.mutex.
func (e *Engine) sweep(key string, now time.Time) {
	for _, k := range e.expiry.sweepDue(now) {
		delete(e.entries, k)
	}
	if key != "" && e.expiry.expired(key, now) {
		delete(e.entries, key)
		e.expiry.clear(key)
	}
}

// Set implements SET: stores a STRING entry, clears any TTL, replaces
// any existing entry regardless of prior type.
func (e *Engine) Set(key string, value Scalar) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.sweep(key, time.Now())
	e.entries[key] = &Entry{Type: TypeString, String: value}
	e.expiry.clear(key)
}

// Get implements GET. A key present with a non-STRING tag fails
// WRONGTYPE rather than returning null or the raw container.
func (e *Engine) Get(key string) (Scalar, bool, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.sweep(key, time.Now())
	entry, ok := e.entries[key]
	if !ok {
		return Scalar{}, false, nil
	}
	if entry.Type != TypeString {
		return Scalar{}, false, ErrWrongType
	}
	return entry.String, true, nil
}

// Delete implements DELETE: removes key's entry and TTL if present.
func (e *Engine) Delete(key string) int {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.sweep(key, time.Now())
	_, existed := e.entries[key]
	if existed {
		delete(e.entries, key)
	}
	e.expiry.clear(key)
	if existed {
		return 1
	}
	return 0
}

// Exists implements EXISTS.
func (e *Engine) Exists(key string) int {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.sweep(key, time.Now())
	if _, ok := e.entries[key]; ok {
		return 1
	}
	return 0
}

// typedEntry implements the type-enforcement rule common to LIST/HASH/
// SET commands: lazy-sweep, then WRONGTYPE if key exists with a
// different tag, else create the empty container of tag on first
// touch. Caller must hold e.mutex.
func (e *Engine) typedEntry(key string, tag DataType) (*Entry, error) {
	e.sweep(key, time.Now())

	entry, ok := e.entries[key]
	if ok {
		if entry.Type != tag {
			return nil, ErrWrongType
		}
		return entry, nil
	}

	entry = &Entry{Type: tag}
	switch tag {
	case TypeList:
		entry.List = NewList()
	case TypeHash:
		entry.Hash = NewHash()
	case TypeSet:
		entry.Set = NewSet()
	}
	e.entries[key] = entry
	return entry, nil
}

// LPush implements LPUSH: values are pushed left one at a time in
// argument order, so the last argument ends up at the front
// (head-first insertion).
func (e *Engine) LPush(key string, values ...Scalar) (int, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	entry, err := e.typedEntry(key, TypeList)
	if err != nil {
		return 0, err
	}
	n := entry.List.Length()
	for _, v := range values {
		n = entry.List.LeftPush(v)
	}
	return n, nil
}

// LPop implements LPOP: removes and returns the front element. The
// list container is created on first touch even if the result is
// null, and then stays empty.
func (e *Engine) LPop(key string) (Scalar, bool, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	entry, err := e.typedEntry(key, TypeList)
	if err != nil {
		return Scalar{}, false, err
	}
	v, ok := entry.List.LeftPop()
	return v, ok, nil
}

// HSet implements HSET: the return value never distinguishes new vs.
// replace, regardless of what the Hash container itself reports.
func (e *Engine) HSet(key, field string, value Scalar) (int, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	entry, err := e.typedEntry(key, TypeHash)
	if err != nil {
		return 0, err
	}
	entry.Hash.Set(field, value)
	return 1, nil
}

// HGet implements HGET.
func (e *Engine) HGet(key, field string) (Scalar, bool, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	entry, err := e.typedEntry(key, TypeHash)
	if err != nil {
		return Scalar{}, false, err
	}
	v, ok := entry.Hash.Get(field)
	return v, ok, nil
}

// SAdd implements SADD: returns the count of members that were not
// already present.
func (e *Engine) SAdd(key string, members ...Scalar) (int, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	entry, err := e.typedEntry(key, TypeSet)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, m := range members {
		if entry.Set.Add(m) {
			added++
		}
	}
	return added, nil
}

// SMembers implements SMEMBERS; order is unspecified.
func (e *Engine) SMembers(key string) ([]Scalar, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	entry, err := e.typedEntry(key, TypeSet)
	if err != nil {
		return nil, err
	}
	return entry.Set.Members(), nil
}

// Expire implements EXPIRE: no-op returning 0 on a missing key,
// otherwise schedules deadline = now + seconds, replacing any prior
// deadline.
func (e *Engine) Expire(key string, seconds int64) int {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	now := time.Now()
	e.sweep(key, now)
	if _, ok := e.entries[key]; !ok {
		return 0
	}
	e.expiry.set(key, now.Add(time.Duration(seconds)*time.Second))
	return 1
}

// FlushAll implements FLUSHALL: clears the key-space and expiry index.
func (e *Engine) FlushAll() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.entries = make(map[string]*Entry)
	e.expiry = newExpiryTracker()
}

// Keys reports the number of live keys as of a fresh sweep, for
// INFO.keys.
func (e *Engine) Keys() int {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.sweep("", time.Now())
	return len(e.entries)
}

// ArityError formats a descriptive arity-error message per command
// rather than a single hardcoded sentinel string.
func ArityError(command string) error {
	return fmt.Errorf("wrong number of arguments for %s", command)
}
