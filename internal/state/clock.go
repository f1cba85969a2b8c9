package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock stamps outgoing ops with this process's site ID and a Lamport
// counter. It is safe for concurrent use.
type Clock struct {
	site    string
	lamport atomic.Uint64
}

func NewClock() *Clock {
	return &Clock{site: uuid.NewString()}
}

func (c *Clock) Site() string { return c.site }

// Tick advances the counter and returns the new timestamp.
func (c *Clock) Tick() uint64 {
	return c.lamport.Add(1)
}

// Stamp returns op tagged with the next local timestamp.
func (c *Clock) Stamp(op Op) Op {
	op.Lamport = c.Tick()
	op.Site = c.site
	return op
}

// StampAction places a at the end of this site's draw order.
func (c *Clock) StampAction(a *Action) {
	a.SetStamp(c.Tick(), c.site)
}

// Observe advances the counter past a timestamp seen on a remote op.
func (c *Clock) Observe(remote uint64) {
	for {
		cur := c.lamport.Load()
		if remote <= cur || c.lamport.CompareAndSwap(cur, remote) {
			return
		}
	}
}

// Now returns the last timestamp handed out or observed.
func (c *Clock) Now() uint64 {
	return c.lamport.Load()
}
