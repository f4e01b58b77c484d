package parallel

import "sync/atomic"

// LiveCounter tracks how many workers are currently running.
type LiveCounter struct {
	n atomic.Int64
}

// Enter marks one worker as started and returns the function that marks it
// finished. Callers defer the returned function.
func (c *LiveCounter) Enter() func() {
	c.n.Add(1)
	return func() { c.n.Add(-1) }
}

// Live returns the number of workers that have entered but not yet left.
func (c *LiveCounter) Live() int {
	return int(c.n.Load())
}
