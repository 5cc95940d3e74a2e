package engine

import "sync/atomic"

// TickClock is a monotonic logical counter for tick numbering.
//
// All ticks are stamped with a strictly increasing number from this
// clock; wall-clock time appears only in receipt timestamps and never
// participates in ordering or hashing.
//
// Thread-safety: safe for concurrent use (atomic operations), though the
// single-writer design means only one goroutine normally calls Next().
type TickClock struct {
	n atomic.Int64
}

// NewTickClock creates a clock starting at 0.
func NewTickClock() *TickClock {
	return &TickClock{}
}

// NewTickClockAt creates a clock resuming from a specific tick number.
func NewTickClockAt(start int64) *TickClock {
	c := &TickClock{}
	c.n.Store(start)
	return c
}

// Next returns the next tick number and increments the clock.
func (c *TickClock) Next() int64 {
	return c.n.Add(1)
}

// Current returns the current tick number without incrementing.
func (c *TickClock) Current() int64 {
	return c.n.Load()
}
