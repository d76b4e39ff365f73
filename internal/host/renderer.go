package host

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/glintui/glint/backend/internal/correlate"
	"github.com/glintui/glint/backend/internal/frame"
	"github.com/glintui/glint/backend/internal/infrastructure/logging"
	"github.com/glintui/glint/backend/internal/protocol"
	"github.com/glintui/glint/backend/internal/shared/id"
	"github.com/glintui/glint/backend/internal/shared/types"
)

// ProxyContentQuery is the fixed query string appended to the proxy
// origin when navigating the outer frame to the proxy page.
const ProxyContentQuery = "/?contentType=rawhtml"

// Action is one content-to-host request surfaced to the embedding
// application.
type Action struct {
	Kind      protocol.Kind
	MessageID string
	Payload   map[string]any
}

// ActionFunc is the embedding application's single action callback. Its
// return value (or error) becomes the terminal response for the action.
type ActionFunc func(ctx context.Context, action Action) (any, error)

// Config configures a Renderer.
type Config struct {
	// AutoResize selects which axes honor ui-size-change.
	AutoResize ResizePolicy
	// ProxyOrigin, when set, routes srcdoc content through the proxy
	// page at that origin instead of loading it directly.
	ProxyOrigin string
	// Sandbox is the space-separated token set requested for proxied
	// content. The proxy adds allow-scripts regardless.
	Sandbox string
	// ActionTimeout bounds each OnAction settlement. Default 30s.
	ActionTimeout time.Duration
	// OnAction receives recognized actions. Nil drops them with a log.
	OnAction ActionFunc
	// RenderData supplies the snapshot for ui-request-render-data and
	// ui-request-data. Nil disables render data replies.
	RenderData func() any
	// Logger receives diagnostics. Default no-op.
	Logger *logging.Logger
}

// Renderer mounts untrusted resource content into its frame and speaks
// the protocol with it.
type Renderer struct {
	cfg     Config
	frame   *frame.Frame
	pending *correlate.Correlator
	log     *logging.Logger

	mu       sync.Mutex
	transfer *protocol.Envelope // queued sandbox transfer, sent on proxy ready
	detach   func()
}

// NewRenderer attaches a renderer to the given frame.
func NewRenderer(f *frame.Frame, cfg Config) *Renderer {
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = correlate.DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	r := &Renderer{
		cfg:     cfg,
		frame:   f,
		pending: correlate.New(),
		log:     cfg.Logger,
	}
	r.detach = f.HostPort().Listen(r.handle)
	return r
}

// Frame returns the frame the renderer owns.
func (r *Renderer) Frame() *frame.Frame { return r.frame }

// Mount loads the resource into the frame. The preferred-frame-size
// metadata hint, when present, is applied before any dynamic size
// message can arrive.
func (r *Renderer) Mount(res *types.UIResource) error {
	if w, h, ok := res.PreferredFrameSize(); ok {
		r.frame.SetWidth(w)
		r.frame.SetHeight(h)
	}

	html := inlineHTML(&res.Resource)

	switch {
	case r.cfg.ProxyOrigin != "" && html != "":
		// The payload is queued before navigation: the proxy page may
		// signal readiness synchronously, and it must never receive the
		// payload before that signal.
		env := protocol.HTMLContent(html, r.cfg.Sandbox)
		r.mu.Lock()
		r.transfer = &env
		r.mu.Unlock()
		r.frame.Navigate(r.cfg.ProxyOrigin + ProxyContentQuery)

	case html != "":
		r.frame.SetSrcDoc(html)

	case remoteURL(&res.Resource) != "":
		r.frame.SetSrc(remoteURL(&res.Resource))

	default:
		return fmt.Errorf("unsupported resource %q (%s)", res.Resource.URI, res.Resource.MIMEType)
	}
	return nil
}

// Close tears down the listener and rejects outstanding actions.
func (r *Renderer) Close() {
	r.detach()
	r.pending.RejectAll(fmt.Errorf("renderer closed"))
}

func (r *Renderer) handle(msg frame.Message) {
	kind := msg.Env.Kind()

	switch {
	case kind.IsAction():
		r.dispatchAction(msg.Env, kind)

	case kind == protocol.KindSizeChange:
		applySize(r.frame, r.cfg.AutoResize, msg.Env)

	case kind == protocol.KindIframeReady:
		r.sendRenderData()

	case kind == protocol.KindRequestRenderData, kind == protocol.KindRequestData:
		r.sendRenderData()

	case kind == protocol.KindProxyReady:
		r.onProxyReady(msg)

	case kind == protocol.KindUnknown:
		// Not ours; nothing to do on the receiving side.

	default:
		r.log.Debug("ignoring lifecycle message", zap.String("type", msg.Env.Type))
	}
}

// onProxyReady releases the queued sandbox transfer, but only to the
// frame the renderer navigated: readiness claims from any other source
// are ignored.
func (r *Renderer) onProxyReady(msg frame.Message) {
	if msg.Source != r.frame.ContentPort() {
		r.log.Warn("proxy ready signal from unexpected source, ignoring")
		return
	}

	r.mu.Lock()
	env := r.transfer
	r.transfer = nil
	r.mu.Unlock()

	if env != nil {
		r.frame.HostPort().Post(*env)
	}
}

func (r *Renderer) sendRenderData() {
	if r.cfg.RenderData == nil {
		return
	}
	r.frame.HostPort().Post(protocol.RenderData(r.cfg.RenderData()))
}

// dispatchAction acknowledges immediately, then settles exactly one
// terminal response from the callback's outcome.
func (r *Renderer) dispatchAction(env protocol.Envelope, kind protocol.Kind) {
	if r.cfg.OnAction == nil {
		r.log.Warn("action dropped, no handler configured", zap.String("type", env.Type))
		return
	}

	msgID := env.MessageID
	if msgID == "" {
		msgID = id.NewMessageID().String()
	}

	p := r.pending.Register(msgID, r.cfg.ActionTimeout)
	r.frame.HostPort().Post(protocol.Ack(msgID))

	action := Action{Kind: kind, MessageID: msgID, Payload: env.Payload}

	go func() {
		out := <-p.Done()
		if out.Err != nil {
			r.frame.HostPort().Post(protocol.ErrorResponse(msgID, out.Err))
			return
		}
		r.frame.HostPort().Post(protocol.Response(msgID, out.Result))
	}()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.ActionTimeout)
		defer cancel()

		result, err := r.cfg.OnAction(ctx, action)
		if err != nil {
			r.pending.Fail(msgID, err)
			return
		}
		r.pending.Settle(msgID, result)
	}()
}

// inlineHTML returns the resource's inline HTML, reading the blob when
// the text form is absent, or "" when the resource is not inline HTML.
func inlineHTML(res *types.Resource) string {
	if !strings.HasPrefix(res.MIMEType, "text/html") {
		return ""
	}
	if res.Text != "" {
		return res.Text
	}
	return string(res.Blob)
}

// remoteURL resolves the resource to a remote frame source: a
// text/uri-list body's first entry, or an http(s) resource URI.
func remoteURL(res *types.Resource) string {
	if strings.HasPrefix(res.MIMEType, "text/uri-list") {
		for _, line := range strings.Split(res.Text, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "#") {
				return line
			}
		}
	}
	if strings.HasPrefix(res.URI, "http://") || strings.HasPrefix(res.URI, "https://") {
		return res.URI
	}
	return ""
}
