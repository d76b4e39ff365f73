// Package platform defines the host platform's native capability
// surface as consumed by the adapter: tool invocation, follow-up turns,
// and the readable render state with change notification. The concrete
// shape behind the interface is owned by the platform, not by the
// protocol core.
package platform

import (
	"context"
	"errors"
	"sync"
)

// ErrUnsupported marks a capability the current platform does not
// provide. The adapter translates it into the protocol's
// capability-absent error responses instead of propagating it.
var ErrUnsupported = errors.New("capability not supported in this environment")

// State is the platform's readable render context. Fields may be zero;
// the adapter applies display defaults when it snapshots.
type State struct {
	ToolInput   map[string]any `json:"toolInput,omitempty"`
	ToolOutput  map[string]any `json:"toolOutput,omitempty"`
	WidgetState map[string]any `json:"widgetState,omitempty"`
	Locale      string         `json:"locale,omitempty"`
	Theme       string         `json:"theme,omitempty"`
	DisplayMode string         `json:"displayMode,omitempty"`
	MaxHeight   int            `json:"maxHeight,omitempty"`
}

// Platform is the native capability object.
type Platform interface {
	// CallTool invokes a named tool. Returns ErrUnsupported when the
	// platform has no tool backend.
	CallTool(ctx context.Context, name string, params map[string]any) (map[string]any, error)

	// SendFollowUp sends prompt text as a follow-up turn. Returns
	// ErrUnsupported when the platform has no conversation backend.
	SendFollowUp(ctx context.Context, prompt string) error

	// State returns the current render state.
	State() State

	// Watch subscribes to state changes and returns the unsubscribe
	// func. The callback receives the full state after each change.
	Watch(fn func(State)) (cancel func())
}

// Store is an observable State holder for Platform implementations.
type Store struct {
	mu       sync.Mutex
	state    State
	watchers map[int]func(State)
	nextID   int
}

// NewStore creates a store with the given initial state.
func NewStore(initial State) *Store {
	return &Store{state: initial, watchers: make(map[int]func(State))}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update mutates the state under the store's lock and notifies watchers
// with the result.
func (s *Store) Update(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	state := s.state
	watchers := make([]func(State), 0, len(s.watchers))
	for _, w := range s.watchers {
		watchers = append(watchers, w)
	}
	s.mu.Unlock()

	for _, w := range watchers {
		w(state)
	}
}

// Watch registers a change callback and returns its removal func.
func (s *Store) Watch(fn func(State)) (cancel func()) {
	s.mu.Lock()
	idx := s.nextID
	s.nextID++
	s.watchers[idx] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, idx)
		s.mu.Unlock()
	}
}
