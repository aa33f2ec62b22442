package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpiryTrackerTombstoneByMismatch(t *testing.T) {
	tr := newExpiryTracker()
	base := time.Now()

	tr.set("k", base.Add(10*time.Millisecond))
	tr.set("k", base.Add(20*time.Millisecond)) // reschedule without removing the old heap entry

	// At a time past the first (stale) deadline but before the second,
	// nothing should be reported due yet.
	due := tr.sweepDue(base.Add(15 * time.Millisecond))
	assert.Empty(t, due)

	due = tr.sweepDue(base.Add(25 * time.Millisecond))
	assert.Equal(t, []string{"k"}, due)

	// k is now gone from the authoritative map.
	_, ok := tr.deadline("k")
	assert.False(t, ok)
}

func TestExpiryTrackerClearLeavesStaleHeapEntry(t *testing.T) {
	tr := newExpiryTracker()
	base := time.Now()

	tr.set("k", base.Add(10*time.Millisecond))
	tr.clear("k")

	due := tr.sweepDue(base.Add(20 * time.Millisecond))
	assert.Empty(t, due)
}
