package services

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPoolRunsAllTasks(t *testing.T) {
	pool := newWorkerPool(3)

	var done atomic.Int32
	for i := 0; i < 20; i++ {
		pool.Submit(func() { done.Add(1) })
	}
	pool.Close()

	assert.Equal(t, int32(20), done.Load())
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	const size = 2
	pool := newWorkerPool(size)

	var inFlight, peak atomic.Int32
	var mu sync.Mutex

	for i := 0; i < 16; i++ {
		pool.Submit(func() {
			n := inFlight.Add(1)
			mu.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			mu.Unlock()
			inFlight.Add(-1)
		})
	}
	pool.Close()

	assert.LessOrEqual(t, peak.Load(), int32(size))
	assert.Positive(t, peak.Load())
}

func TestWorkerPoolCloseWithoutSubmit(t *testing.T) {
	pool := newWorkerPool(4)
	// Must not panic or hang when nothing was ever submitted.
	pool.Close()
}

func TestWorkerPoolMinimumSize(t *testing.T) {
	pool := newWorkerPool(0)

	ran := false
	pool.Submit(func() { ran = true })
	pool.Close()

	assert.True(t, ran)
}
