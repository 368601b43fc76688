package core

import "sync/atomic"

// SequenceCounter hands out strictly increasing integers. It backs both the
// hub's global event sequence and the per-hub-state-entry versioning; every
// call returns a value strictly greater than every value it has already
// returned, even under concurrent callers.
type SequenceCounter struct {
	value int64
}

// IncrementAndGet atomically advances the counter and returns the new value.
// The first call returns 1.
func (c *SequenceCounter) IncrementAndGet() int64 {
	return atomic.AddInt64(&c.value, 1)
}

// Get returns the current value without advancing it.
func (c *SequenceCounter) Get() int64 {
	return atomic.LoadInt64(&c.value)
}
