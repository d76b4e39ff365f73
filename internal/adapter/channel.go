package adapter

import "sync"

// Sender forwards one outgoing message toward the parent frame. The
// value is opaque: non-protocol traffic passes through unmodified.
type Sender func(msg any)

// Channel is the content's single outgoing channel capability. The
// content sends through it; the adapter acquires the slot at install
// and releases it through the returned restore func, so interception
// is scoped rather than a process-wide mutation.
type Channel struct {
	mu   sync.Mutex
	send Sender
}

// NewChannel creates a channel that forwards through send.
func NewChannel(send Sender) *Channel {
	return &Channel{send: send}
}

// Send forwards msg through the current occupant of the slot.
func (c *Channel) Send(msg any) {
	c.mu.Lock()
	send := c.send
	c.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// acquire swaps the slot to s and returns the previous sender together
// with a restore func that puts it back.
func (c *Channel) acquire(s Sender) (prev Sender, restore func()) {
	c.mu.Lock()
	prev = c.send
	c.send = s
	c.mu.Unlock()

	return prev, func() {
		c.mu.Lock()
		c.send = prev
		c.mu.Unlock()
	}
}
