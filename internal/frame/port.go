package frame

import (
	"sync"

	"github.com/glintui/glint/backend/internal/protocol"
)

// Message is one delivery into a Port: the envelope plus the sending
// port's identity.
type Message struct {
	Env    protocol.Envelope
	Source *Port
}

// Handler consumes deliveries. Handlers run synchronously on the
// sender's goroutine, preserving postMessage ordering.
type Handler func(Message)

// Port is one endpoint of a cross-frame message channel.
type Port struct {
	mu       sync.Mutex
	peer     *Port
	handlers map[int]Handler
	nextID   int
	closed   bool
}

// Pair creates two linked ports. A Post on either delivers to the other.
func Pair() (*Port, *Port) {
	a := &Port{handlers: make(map[int]Handler)}
	b := &Port{handlers: make(map[int]Handler)}
	a.peer = b
	b.peer = a
	return a, b
}

// Peer returns the linked endpoint, or nil for an unlinked port.
func (p *Port) Peer() *Port {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peer
}

// Post delivers env to the peer with this port as the source.
func (p *Port) Post(env protocol.Envelope) {
	peer := p.Peer()
	if peer == nil {
		return
	}
	peer.Deliver(env, p)
}

// Deliver invokes this port's handlers with env attributed to from.
// A closed port drops deliveries silently.
func (p *Port) Deliver(env protocol.Envelope, from *Port) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	snapshot := make([]Handler, 0, len(p.handlers))
	for _, h := range p.handlers {
		snapshot = append(snapshot, h)
	}
	p.mu.Unlock()

	msg := Message{Env: env, Source: from}
	for _, h := range snapshot {
		h(msg)
	}
}

// Listen registers a handler and returns its removal func. Removal is
// idempotent.
func (p *Port) Listen(h Handler) (remove func()) {
	p.mu.Lock()
	idx := p.nextID
	p.nextID++
	p.handlers[idx] = h
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.handlers, idx)
		p.mu.Unlock()
	}
}

// Close detaches all handlers and drops future deliveries.
func (p *Port) Close() {
	p.mu.Lock()
	p.closed = true
	p.handlers = make(map[int]Handler)
	p.mu.Unlock()
}
