package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceCounterIncrementAndGet(t *testing.T) {
	var c SequenceCounter
	assert.EqualValues(t, 1, c.IncrementAndGet())
	assert.EqualValues(t, 2, c.IncrementAndGet())
	assert.EqualValues(t, 2, c.Get())
}

func TestSequenceCounterConcurrentUnique(t *testing.T) {
	var c SequenceCounter
	const goroutines = 50
	const perGoroutine = 200

	seen := make(chan int64, goroutines*perGoroutine)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				seen <- c.IncrementAndGet()
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int64]struct{}, goroutines*perGoroutine)
	for v := range seen {
		_, dup := unique[v]
		assert.False(t, dup, "sequence value handed out twice: %d", v)
		unique[v] = struct{}{}
	}
	assert.Len(t, unique, goroutines*perGoroutine)
}
