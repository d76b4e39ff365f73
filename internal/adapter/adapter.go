package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glintui/glint/backend/internal/correlate"
	"github.com/glintui/glint/backend/internal/infrastructure/logging"
	"github.com/glintui/glint/backend/internal/platform"
	"github.com/glintui/glint/backend/internal/protocol"
)

// Capability-absent and unsupported-action error messages. Exact wire
// strings; the content renders them verbatim.
const (
	errToolUnsupported     = "Tool calling is not supported in this environment"
	errFollowupUnsupported = "Followup turns are not supported in this environment"
	errLinkUnsupported     = "Navigation is not supported in Apps SDK environment"
	errUninstalled         = "adapter uninstalled"
)

// IntentHandling selects how intent actions are translated.
type IntentHandling string

const (
	// IntentPrompt collapses the intent into a follow-up turn.
	IntentPrompt IntentHandling = "prompt"
	// IntentIgnore acknowledges intents without any native call.
	IntentIgnore IntentHandling = "ignore"
)

// Options configures an Adapter.
type Options struct {
	// HostOrigin names the origin the adapter represents. Informational;
	// defaults to "current".
	HostOrigin string
	// Timeout bounds each native call. Default 30s.
	Timeout time.Duration
	// Intent selects intent translation. Default IntentPrompt.
	Intent IntentHandling
	// Logger receives diagnostics. Default no-op.
	Logger *logging.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithHostOrigin sets the represented host origin.
func WithHostOrigin(origin string) Option {
	return func(o *Options) { o.HostOrigin = origin }
}

// WithTimeout sets the per-call budget.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithIntentHandling sets intent translation mode.
func WithIntentHandling(mode IntentHandling) Option {
	return func(o *Options) { o.Intent = mode }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// Adapter is one translation-layer instance. Create with New; one
// instance per content execution context.
type Adapter struct {
	platform platform.Platform
	channel  *Channel
	dispatch func(protocol.Envelope)
	pending  *correlate.Correlator
	opts     Options
	log      *logging.Logger

	mu        sync.Mutex
	installed bool
	forward   Sender
	restore   func()
	unwatch   func()
}

// New creates an adapter for the given platform. channel is the
// content's outgoing channel capability; dispatch delivers synthetic
// inbound protocol messages to the content.
func New(p platform.Platform, channel *Channel, dispatch func(protocol.Envelope), opts ...Option) *Adapter {
	o := Options{
		HostOrigin: "current",
		Timeout:    correlate.DefaultTimeout,
		Intent:     IntentPrompt,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	return &Adapter{
		platform: p,
		channel:  channel,
		dispatch: dispatch,
		pending:  correlate.New(),
		opts:     o,
		log:      o.Logger,
	}
}

// Install intercepts the outgoing channel and begins translating. It
// returns false without side effects when no platform capability is
// present, and false with a warning when already installed.
func (a *Adapter) Install() bool {
	if a.platform == nil {
		return false
	}

	a.mu.Lock()
	if a.installed {
		a.mu.Unlock()
		a.log.Warn("adapter already installed, ignoring second install")
		return false
	}
	a.forward, a.restore = a.channel.acquire(a.intercept)
	a.installed = true
	a.mu.Unlock()

	a.unwatch = a.platform.Watch(func(platform.State) {
		a.publishSnapshot()
	})
	a.publishSnapshot()
	return true
}

// Uninstall rejects every still-pending request, stops observing the
// platform, and restores the original channel function. Safe to call
// without a prior Install, and more than once.
func (a *Adapter) Uninstall() {
	a.pending.RejectAll(errors.New(errUninstalled))

	a.mu.Lock()
	restore, unwatch := a.restore, a.unwatch
	a.restore, a.unwatch = nil, nil
	a.forward = nil
	a.installed = false
	a.mu.Unlock()

	if unwatch != nil {
		unwatch()
	}
	if restore != nil {
		restore()
	}
}

// intercept is the channel occupant while installed.
func (a *Adapter) intercept(msg any) {
	env, kind := protocol.Classify(msg)
	if kind == protocol.KindUnknown {
		a.mu.Lock()
		forward := a.forward
		a.mu.Unlock()
		if forward != nil {
			forward(msg)
		}
		return
	}

	switch {
	case kind.IsAction():
		a.handleAction(env, kind)
	case kind == protocol.KindRequestRenderData,
		kind == protocol.KindRequestData,
		kind == protocol.KindIframeReady:
		a.publishSnapshot()
	default:
		a.log.Debug("ignoring lifecycle message", zap.String("type", env.Type))
	}
}

// handleAction acknowledges, performs the native call bounded by the
// configured timeout, and dispatches exactly one terminal response.
func (a *Adapter) handleAction(env protocol.Envelope, kind protocol.Kind) {
	id := env.MessageID
	if id == "" {
		id = uuid.New().String()
	}

	p := a.pending.Register(id, a.opts.Timeout)
	a.dispatch(protocol.Ack(id))

	go func() {
		out := <-p.Done()
		if out.Err != nil {
			a.dispatch(protocol.ErrorResponse(id, out.Err))
			return
		}
		a.dispatch(protocol.Response(id, out.Result))
	}()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.opts.Timeout)
		defer cancel()

		result, err := a.invoke(ctx, kind, env)
		if err != nil {
			a.pending.Fail(id, err)
			return
		}
		a.pending.Settle(id, result)
	}()
}

// invoke performs the native translation for one action kind.
func (a *Adapter) invoke(ctx context.Context, kind protocol.Kind, env protocol.Envelope) (any, error) {
	switch kind {
	case protocol.KindTool:
		result, err := a.platform.CallTool(ctx, env.String("toolName"), env.Object("params"))
		if errors.Is(err, platform.ErrUnsupported) {
			return nil, errors.New(errToolUnsupported)
		}
		if err != nil {
			return nil, err
		}
		return result, nil

	case protocol.KindPrompt:
		return a.followUp(ctx, env.String("prompt"))

	case protocol.KindIntent:
		if a.opts.Intent == IntentIgnore {
			a.log.Debug("intent ignored by configuration", zap.String("intent", env.String("intent")))
			return map[string]any{"ignored": true}, nil
		}
		return a.followUp(ctx, intentPrompt(env))

	case protocol.KindNotify:
		a.log.Info("widget notification", zap.String("message", env.String("message")))
		return map[string]any{"acknowledged": true}, nil

	case protocol.KindLink:
		return nil, errors.New(errLinkUnsupported)
	}
	return nil, fmt.Errorf("unhandled action kind %s", kind)
}

func (a *Adapter) followUp(ctx context.Context, prompt string) (any, error) {
	err := a.platform.SendFollowUp(ctx, prompt)
	if errors.Is(err, platform.ErrUnsupported) {
		return nil, errors.New(errFollowupUnsupported)
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{"sent": true}, nil
}

// intentPrompt collapses an intent and its params into one free-text
// follow-up string. The format is load-bearing for downstream parsing:
// keep in sync with the native follow-up contract before changing it.
func intentPrompt(env protocol.Envelope) string {
	intent := env.String("intent")
	params := env.Object("params")
	if len(params) == 0 {
		return intent
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return intent
	}
	return intent + " with params " + string(raw)
}

// publishSnapshot dispatches a fresh render data snapshot to the content.
func (a *Adapter) publishSnapshot() {
	a.dispatch(protocol.RenderData(Snapshot(a.platform.State())))
}

// PendingCount reports live correlated requests. Diagnostic.
func (a *Adapter) PendingCount() int {
	return a.pending.Len()
}
