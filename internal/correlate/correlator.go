// Package correlate matches asynchronous protocol responses back to the
// request that produced them. Both the host renderer and the platform
// adapter register an entry per outgoing message id and settle it exactly
// once: by result, by error, by per-entry timeout, or by bulk rejection
// at teardown. A second settlement for the same id is a safe no-op.
package correlate

import (
	"sync"
	"time"
)

// DefaultTimeout bounds a correlated call when the caller does not
// specify a budget.
const DefaultTimeout = 30 * time.Second

// ErrTimeout is the failure delivered when no settlement arrives within
// the entry's budget.
type ErrTimeout struct {
	ID string
}

func (e ErrTimeout) Error() string {
	return "request " + e.ID + " timed out waiting for a response"
}

// ErrorName satisfies the protocol error naming hook.
func (e ErrTimeout) ErrorName() string { return "TimeoutError" }

// Outcome is the single settlement value of a pending request.
type Outcome struct {
	Result any
	Err    error
}

// Pending is the caller's handle on one in-flight request. Done yields
// exactly one Outcome and is never closed without a value.
type Pending struct {
	id   string
	done chan Outcome
}

// ID returns the correlation id the handle was registered under.
func (p *Pending) ID() string { return p.id }

// Done returns the settlement channel. It delivers one Outcome.
func (p *Pending) Done() <-chan Outcome { return p.done }

type entry struct {
	pending *Pending
	timer   *time.Timer
}

// Correlator owns the id → pending mapping. All operations are O(1)
// against the map and safe for concurrent use.
type Correlator struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty correlator.
func New() *Correlator {
	return &Correlator{entries: make(map[string]*entry)}
}

// Register creates the single live record for id. A timeout <= 0 falls
// back to DefaultTimeout. Registering an id that is already live settles
// nothing and returns the existing handle, preserving the one-record
// invariant.
func (c *Correlator) Register(id string, timeout time.Duration) *Pending {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[id]; ok {
		return existing.pending
	}

	p := &Pending{id: id, done: make(chan Outcome, 1)}
	e := &entry{pending: p}
	e.timer = time.AfterFunc(timeout, func() {
		c.Fail(id, ErrTimeout{ID: id})
	})
	c.entries[id] = e
	return p
}

// Settle resolves the live record for id and removes it. Returns false
// when no record is live, which makes late native completions after a
// timeout a no-op.
func (c *Correlator) Settle(id string, result any) bool {
	return c.finish(id, Outcome{Result: result})
}

// Fail rejects the live record for id and removes it.
func (c *Correlator) Fail(id string, err error) bool {
	return c.finish(id, Outcome{Err: err})
}

func (c *Correlator) finish(id string, out Outcome) bool {
	c.mu.Lock()
	e, ok := c.entries[id]
	if ok {
		delete(c.entries, id)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	e.timer.Stop()
	e.pending.done <- out
	return true
}

// RejectAll fails every live record immediately, regardless of the
// entries' individual timeouts. Used for bulk teardown.
func (c *Correlator) RejectAll(err error) {
	c.mu.Lock()
	drained := c.entries
	c.entries = make(map[string]*entry)
	c.mu.Unlock()

	for _, e := range drained {
		e.timer.Stop()
		e.pending.done <- Outcome{Err: err}
	}
}

// Len reports the number of live records.
func (c *Correlator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
