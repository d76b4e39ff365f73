// Package proxy implements the sandbox proxy page: an intermediary
// frame served from a separate origin that materializes untrusted HTML
// inside a second, more tightly sandboxed inner frame. The indirection
// keeps raw srcdoc content out of the embedding application's own
// origin at the cost of one extra round trip and one extra frame.
package proxy

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/glintui/glint/backend/internal/frame"
	"github.com/glintui/glint/backend/internal/infrastructure/logging"
	"github.com/glintui/glint/backend/internal/protocol"
)

// SandboxScripts is the sandbox token the channel always grants: the
// embedded content's liveness depends on script execution.
const SandboxScripts = "allow-scripts"

// State is the channel's lifecycle phase.
type State int

const (
	// Idle: created, listener not yet attached.
	Idle State = iota
	// Ready: listening, readiness announced to the parent.
	Ready
	// Serving: an inner frame is materialized.
	Serving
)

// Channel is one proxy page instance bound to its embedding frame. It
// honors ui-html-content only from its parent window: the page is
// reachable by any origin but trusts exactly its embedder.
type Channel struct {
	mu     sync.Mutex
	state  State
	port   *frame.Port
	parent *frame.Port
	inner  *frame.Frame
	detach func()
	log    *logging.Logger
}

// Open attaches a channel to the content side of the given frame, as
// the proxy page does on load: listen first, then announce readiness
// to the parent.
func Open(f *frame.Frame, logger *logging.Logger) *Channel {
	if logger == nil {
		logger = logging.Nop()
	}
	c := &Channel{
		port:   f.ContentPort(),
		parent: f.ContentPort().Peer(),
		log:    logger,
	}
	c.detach = c.port.Listen(c.handle)
	c.state = Ready
	c.port.Post(protocol.ProxyReady())
	return c
}

// Attach registers Open as the navigation behavior for proxy URLs, so
// a renderer pointing a frame at the proxy origin instantiates the
// page. Returns the hook for composition with other page behaviors.
func Attach(origin string, logger *logging.Logger) frame.NavigateFunc {
	return func(f *frame.Frame, url string) {
		if strings.HasPrefix(url, origin) {
			Open(f, logger)
		}
	}
}

// State returns the current lifecycle phase.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Inner returns the materialized inner frame, or nil before Serving.
func (c *Channel) Inner() *frame.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner
}

// Close detaches the listener and tears down the inner frame.
func (c *Channel) Close() {
	c.detach()
	c.mu.Lock()
	inner := c.inner
	c.inner = nil
	c.state = Idle
	c.mu.Unlock()
	if inner != nil {
		inner.Close()
	}
}

func (c *Channel) handle(msg frame.Message) {
	if msg.Env.Kind() != protocol.KindHTMLContent {
		return
	}
	// Trust boundary: only the embedder may supply content.
	if msg.Source != c.parent {
		c.log.Warn("ui-html-content from non-parent source, ignoring")
		return
	}
	c.serve(msg.Env.String("html"), msg.Env.String("sandbox"))
}

// serve tears down any existing inner frame and materializes a fresh
// one from the transfer payload. The sandbox attribute is the union of
// the caller's tokens and the mandatory allow-scripts token; caller
// tokens are never dropped.
func (c *Channel) serve(html, sandbox string) {
	tokens := strings.Fields(sandbox)
	hasScripts := false
	for _, t := range tokens {
		if t == SandboxScripts {
			hasScripts = true
			break
		}
	}
	if !hasScripts {
		tokens = append(tokens, SandboxScripts)
	}

	next := frame.New()
	next.SetSandbox(tokens)
	next.SetSrcDoc(html)

	c.mu.Lock()
	prev := c.inner
	c.inner = next
	c.state = Serving
	c.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	c.log.Debug("inner frame materialized",
		zap.String("sandbox", next.SandboxAttr()),
		zap.Int("html_bytes", len(html)),
	)
}
