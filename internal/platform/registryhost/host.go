// Package registryhost backs the platform capability interface with
// the tool provider registry, so widget tool actions resolve against
// registered services. Follow-up turns are delegated to an injected
// conversation sink; without one the capability is absent.
package registryhost

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/glintui/glint/backend/internal/domain/service"
	"github.com/glintui/glint/backend/internal/infrastructure/logging"
	"github.com/glintui/glint/backend/internal/platform"
	"github.com/glintui/glint/backend/internal/shared/types"
)

// FollowUpFunc delivers a follow-up turn to the conversation backend.
type FollowUpFunc func(ctx context.Context, prompt string) error

// Host implements platform.Platform over a service registry and an
// observable state store.
type Host struct {
	registry *service.Registry
	store    *platform.Store
	followUp FollowUpFunc
	widgetID string
	log      *logging.Logger
}

// Option mutates a Host during construction.
type Option func(*Host)

// WithFollowUp enables the follow-up capability.
func WithFollowUp(fn FollowUpFunc) Option {
	return func(h *Host) { h.followUp = fn }
}

// WithWidgetID scopes tool calls to a widget.
func WithWidgetID(id string) Option {
	return func(h *Host) { h.widgetID = id }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(h *Host) { h.log = l }
}

// New creates a host over the given registry and store.
func New(registry *service.Registry, store *platform.Store, opts ...Option) *Host {
	h := &Host{registry: registry, store: store, log: logging.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CallTool resolves and executes a dotted tool id. The result mirrors
// the MCP tool-call shape: structuredContent, content, isError.
func (h *Host) CallTool(ctx context.Context, name string, params map[string]any) (map[string]any, error) {
	if h.registry == nil {
		return nil, platform.ErrUnsupported
	}

	var tctx *types.Context
	if h.widgetID != "" {
		tctx = &types.Context{WidgetID: &h.widgetID}
	}

	h.store.Update(func(s *platform.State) {
		s.ToolInput = map[string]any{"toolName": name, "params": params}
	})

	result, err := h.registry.Execute(ctx, name, params, tctx)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}

	out := map[string]any{
		"structuredContent": result.Data,
		"content":           []any{},
		"isError":           !result.Success,
	}
	if result.Error != nil {
		out["content"] = []any{map[string]any{"type": "text", "text": *result.Error}}
	}

	h.store.Update(func(s *platform.State) {
		s.ToolOutput = out
	})

	h.log.Debug("tool executed",
		zap.String("tool", name),
		zap.Bool("success", result.Success),
	)
	return out, nil
}

// SendFollowUp forwards the prompt to the conversation sink.
func (h *Host) SendFollowUp(ctx context.Context, prompt string) error {
	if h.followUp == nil {
		return platform.ErrUnsupported
	}
	return h.followUp(ctx, prompt)
}

// State returns the current render state.
func (h *Host) State() platform.State {
	return h.store.State()
}

// Watch subscribes to state changes.
func (h *Host) Watch(fn func(platform.State)) (cancel func()) {
	return h.store.Watch(fn)
}
