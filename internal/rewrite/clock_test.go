package rewrite

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_StartsAtZero(t *testing.T) {
	c := NewClock()

	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
}

func TestClock_NextAdvances(t *testing.T) {
	c := NewClock()

	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(3), c.Next())
	assert.Equal(t, int64(3), c.Current())
}

func TestClock_NewClockAt(t *testing.T) {
	c := NewClockAt(41)

	assert.Equal(t, int64(41), c.Current())
	assert.Equal(t, int64(42), c.Next())
}

func TestClock_ConcurrentNextIsUnique(t *testing.T) {
	c := NewClock()

	const goroutines = 10
	const perGoroutine = 100

	var mu sync.Mutex
	seen := make(map[int64]bool)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				step := c.Next()
				mu.Lock()
				if seen[step] {
					t.Errorf("step %d issued twice", step)
				}
				seen[step] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*perGoroutine)
	assert.Equal(t, int64(goroutines*perGoroutine), c.Current())
}
