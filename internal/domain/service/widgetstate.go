package service

import (
	"context"
	"fmt"

	"github.com/glintui/glint/backend/internal/platform"
	"github.com/glintui/glint/backend/internal/shared/types"
)

// WidgetStateProvider exposes the widget's persistent state slice of
// the platform store as callable tools, so embedded content can read
// and update its own state through the ordinary tool path.
type WidgetStateProvider struct {
	store *platform.Store
}

// NewWidgetStateProvider creates the provider over the given store.
func NewWidgetStateProvider(store *platform.Store) *WidgetStateProvider {
	return &WidgetStateProvider{store: store}
}

// Definition returns service metadata and tool definitions.
func (p *WidgetStateProvider) Definition() types.Service {
	return types.Service{
		ID:           "widgetstate",
		Name:         "Widget State Service",
		Description:  "Read and update the widget's persistent state",
		Category:     types.CategoryWidget,
		Capabilities: []string{"state_read", "state_write"},
		Tools: []types.Tool{
			{
				ID:          "widgetstate.get",
				Name:        "Get State",
				Description: "Returns the widget's current state object",
				Returns:     "object",
			},
			{
				ID:          "widgetstate.set",
				Name:        "Set State",
				Description: "Merges the given fields into the widget's state",
				Parameters: []types.Parameter{
					{Name: "state", Type: "object", Description: "Fields to merge", Required: true},
				},
				Returns: "object",
			},
		},
	}
}

// Execute runs a widgetstate tool.
func (p *WidgetStateProvider) Execute(ctx context.Context, toolID string, params map[string]any, _ *types.Context) (*types.Result, error) {
	switch toolID {
	case "widgetstate.get":
		return &types.Result{
			Success: true,
			Data:    map[string]any{"state": p.store.State().WidgetState},
		}, nil

	case "widgetstate.set":
		patch, ok := params["state"].(map[string]any)
		if !ok {
			return failure("state parameter must be an object"), nil
		}
		p.store.Update(func(s *platform.State) {
			if s.WidgetState == nil {
				s.WidgetState = make(map[string]any)
			}
			for k, v := range patch {
				s.WidgetState[k] = v
			}
		})
		return &types.Result{
			Success: true,
			Data:    map[string]any{"state": p.store.State().WidgetState},
		}, nil
	}

	return failure(fmt.Sprintf("unknown tool: %s", toolID)), nil
}
