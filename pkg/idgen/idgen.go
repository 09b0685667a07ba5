package idgen

import (
	"sync/atomic"
)

// Counter hands out base+1, base+2, base+3...
// A Counter belongs to a single conversion run. Create a new one for every partition
// (or run) that needs its own ID space, instead of sharing one across runs.
type Counter struct {
	last atomic.Int64
}

// NewCounter creates a counter whose first ID will be base+1
func NewCounter(base int64) *Counter {
	c := &Counter{}
	c.last.Store(base)
	return c
}

func (c *Counter) Next() int64 {
	return c.last.Add(1)
}

// Last returns the most recently issued ID (or the base, if none has been issued)
func (c *Counter) Last() int64 {
	return c.last.Load()
}
