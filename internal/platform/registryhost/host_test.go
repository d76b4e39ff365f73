package registryhost

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glintui/glint/backend/internal/domain/service"
	"github.com/glintui/glint/backend/internal/platform"
)

func newHost(t *testing.T, opts ...Option) (*Host, *platform.Store) {
	t.Helper()
	store := platform.NewStore(platform.State{})
	registry := service.NewRegistry()
	require.NoError(t, registry.Register(service.NewWidgetStateProvider(store)))
	return New(registry, store, opts...), store
}

func TestCallToolUpdatesState(t *testing.T) {
	h, store := newHost(t)

	changes := 0
	cancel := h.Watch(func(platform.State) { changes++ })
	defer cancel()

	out, err := h.CallTool(context.Background(), "widgetstate.set",
		map[string]any{"state": map[string]any{"page": 2}})
	require.NoError(t, err)

	assert.Equal(t, false, out["isError"])
	structured, _ := out["structuredContent"].(map[string]any)
	assert.NotNil(t, structured["state"])

	state := store.State()
	assert.Equal(t, "widgetstate.set", state.ToolInput["toolName"])
	assert.Equal(t, out, state.ToolOutput)
	assert.GreaterOrEqual(t, changes, 2, "input and output updates both notify")
}

func TestCallToolFailureShape(t *testing.T) {
	h, _ := newHost(t)

	out, err := h.CallTool(context.Background(), "widgetstate.set",
		map[string]any{"state": "not an object"})
	require.NoError(t, err, "tool-level failures are results, not errors")
	assert.Equal(t, true, out["isError"])
	content := out["content"].([]any)
	require.NotEmpty(t, content)
}

func TestCallToolWithoutRegistry(t *testing.T) {
	h := New(nil, platform.NewStore(platform.State{}))
	_, err := h.CallTool(context.Background(), "x.y", nil)
	assert.ErrorIs(t, err, platform.ErrUnsupported)
}

func TestFollowUpCapability(t *testing.T) {
	h, _ := newHost(t)
	assert.ErrorIs(t, h.SendFollowUp(context.Background(), "hi"), platform.ErrUnsupported)

	var got string
	h2, _ := newHost(t, WithFollowUp(func(_ context.Context, prompt string) error {
		got = prompt
		return nil
	}))
	require.NoError(t, h2.SendFollowUp(context.Background(), "next step"))
	assert.Equal(t, "next step", got)
}

func TestFollowUpErrorPropagates(t *testing.T) {
	h, _ := newHost(t, WithFollowUp(func(context.Context, string) error {
		return errors.New("conversation closed")
	}))
	assert.EqualError(t, h.SendFollowUp(context.Background(), "x"), "conversation closed")
}
