package core

import (
	"sort"
	"sync"

	"github.com/nimbuscore/eventhub/internal/core/logging"
)

// SharedStateStatus is the resolution outcome of a shared-state lookup.
type SharedStateStatus int

const (
	// StatusNone means no entry exists at or before the requested version.
	StatusNone SharedStateStatus = iota
	// StatusPending means the closest entry at or before the requested
	// version is a placeholder awaiting resolution.
	StatusPending
	// StatusSet means the closest entry at or before the requested version
	// carries data.
	StatusSet
)

// SharedStateResult is the outcome of resolving a timeline at a version.
type SharedStateResult struct {
	Status  SharedStateStatus
	Version int64
	Data    map[string]any
}

type sharedStateEntry struct {
	version int64
	status  SharedStateStatus
	data    map[string]any
}

// SharedStateTimeline holds one extension's history of shared-state values,
// keyed by strictly increasing version numbers. A read at version v resolves
// to the entry with the greatest version <= v.
type SharedStateTimeline struct {
	mu      sync.RWMutex
	entries []sharedStateEntry
	logger  logging.ServiceLogger
}

// NewSharedStateTimeline constructs an empty timeline. logger may be nil.
func NewSharedStateTimeline(logger logging.ServiceLogger) *SharedStateTimeline {
	return &SharedStateTimeline{logger: logger}
}

func (t *SharedStateTimeline) warn(msg string, fields logging.LogFields) {
	if t.logger == nil {
		return
	}
	t.logger.Info(msg, fields)
}

// lastVersionLocked returns the highest version recorded, or -1 if empty.
// Callers must hold t.mu.
func (t *SharedStateTimeline) lastVersionLocked() int64 {
	if len(t.entries) == 0 {
		return -1
	}
	return t.entries[len(t.entries)-1].version
}

// AddPending inserts a placeholder entry at version. It is a no-op, logging
// a warning, if version is not strictly greater than every version already
// recorded. Returns whether the entry was added.
func (t *SharedStateTimeline) AddPending(version int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if version <= t.lastVersionLocked() {
		t.warn("shared state: addPending called with non-monotonic version", logging.LogFields{
			"version":     version,
			"lastVersion": t.lastVersionLocked(),
		})
		return false
	}

	t.entries = append(t.entries, sharedStateEntry{version: version, status: StatusPending})
	return true
}

// Set inserts the entry at version with SET data, or overwrites the existing
// entry at that exact version if one is already present: a caller creating
// shared state unconditionally owns its own version. It is a no-op, logging
// a warning, if version is strictly less than the latest recorded version
// and no entry already exists at version, matching AddPending's rule that no
// mutation of past entries is permitted.
func (t *SharedStateTimeline) Set(version int64, data map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := sharedStateEntry{version: version, status: StatusSet, data: data}
	for i := range t.entries {
		if t.entries[i].version == version {
			t.entries[i] = entry
			return
		}
	}

	if version <= t.lastVersionLocked() {
		t.warn("shared state: set called with non-monotonic version", logging.LogFields{
			"version":     version,
			"lastVersion": t.lastVersionLocked(),
		})
		return
	}
	t.entries = append(t.entries, entry)
}

// UpdatePending resolves an existing PENDING entry at version to SET with
// data. No-op, logging a warning, if no PENDING entry exists at that exact
// version (for example if it was already resolved, or never added).
// Returns whether the entry was updated.
func (t *SharedStateTimeline) UpdatePending(version int64, data map[string]any) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if t.entries[i].version == version {
			if t.entries[i].status != StatusPending {
				t.warn("shared state: updatePending called on a non-pending entry", logging.LogFields{
					"version": version,
				})
				return false
			}
			t.entries[i].status = StatusSet
			t.entries[i].data = data
			return true
		}
	}

	t.warn("shared state: updatePending called with no matching pending entry", logging.LogFields{
		"version": version,
	})
	return false
}

// Empty reports whether the timeline has no entries yet.
func (t *SharedStateTimeline) Empty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries) == 0
}

// Latest returns the most recently written entry, or StatusNone if the
// timeline is empty. Unlike Resolve, it is not versioned against any
// particular event: callers use it when "the current value" is well-defined
// on its own, independent of how far any individual reader has progressed.
func (t *SharedStateTimeline) Latest() SharedStateResult {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.entries) == 0 {
		return SharedStateResult{Status: StatusNone}
	}

	entry := t.entries[len(t.entries)-1]
	return SharedStateResult{Status: entry.status, Version: entry.version, Data: entry.data}
}

// Resolve returns the entry with the greatest version <= v, or StatusNone if
// no such entry exists.
func (t *SharedStateTimeline) Resolve(v int64) SharedStateResult {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].version > v })
	if idx == 0 {
		return SharedStateResult{Status: StatusNone, Version: v}
	}

	entry := t.entries[idx-1]
	return SharedStateResult{Status: entry.status, Version: entry.version, Data: entry.data}
}
