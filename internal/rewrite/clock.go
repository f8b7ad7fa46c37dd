package rewrite

import "sync/atomic"

// Clock is the monotonic logical clock that numbers pass applications.
//
// Every journal row carries a step from this clock, never a wall-clock
// timestamp, so the order of work is explicit and replays identically.
//
// Thread-safety: Clock is safe for concurrent use, though the Driver's
// single-writer design means one goroutine typically calls Next().
type Clock struct {
	step atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific step. Used when
// appending to an existing journal to continue its step sequence.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.step.Store(start)
	return c
}

// Next returns the next step and advances the clock. Each call returns
// a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.step.Add(1)
}

// Current returns the current step without advancing.
func (c *Clock) Current() int64 {
	return c.step.Load()
}
