package core

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nimbuscore/eventhub/internal/core/ids"
)

// responseEntry tracks one pending RegisterResponseListener call. fired
// guards against the response-arrival and timeout paths both racing to
// invoke listener: whichever wins the compare-and-swap runs it. id is an
// internal correlation identifier for logging; it is never part of the
// public Event contract.
type responseEntry struct {
	id        string
	triggerID uuid.UUID
	listener  ResponseListener
	timer     *time.Timer
	fired     atomic.Bool
}

// responseTable is the hub's registry of outstanding response listeners,
// keyed by the trigger event's ID.
type responseTable struct {
	mu      sync.Mutex
	entries map[uuid.UUID][]*responseEntry
}

func newResponseTable() *responseTable {
	return &responseTable{entries: make(map[uuid.UUID][]*responseEntry)}
}

func (t *responseTable) register(triggerID uuid.UUID, listener ResponseListener, timeout time.Duration, onTimeout func(*responseEntry)) *responseEntry {
	entry := &responseEntry{id: ids.CreateULID(), triggerID: triggerID, listener: listener}
	entry.timer = time.AfterFunc(timeout, func() { onTimeout(entry) })

	t.mu.Lock()
	t.entries[triggerID] = append(t.entries[triggerID], entry)
	t.mu.Unlock()
	return entry
}

// removeAll pops and returns every entry registered for triggerID, leaving
// none behind. Used when a matching response event arrives.
func (t *responseTable) removeAll(triggerID uuid.UUID) []*responseEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := t.entries[triggerID]
	delete(t.entries, triggerID)
	return entries
}

// remove drops a single entry, used when its own timeout fires first.
func (t *responseTable) remove(entry *responseEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	remaining := t.entries[entry.triggerID][:0]
	for _, e := range t.entries[entry.triggerID] {
		if e != entry {
			remaining = append(remaining, e)
		}
	}
	if len(remaining) == 0 {
		delete(t.entries, entry.triggerID)
	} else {
		t.entries[entry.triggerID] = remaining
	}
}
