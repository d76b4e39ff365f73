// Package service implements the tool provider registry: the backend
// behind widget tool calls. Providers expose a service definition and
// an execution entry point keyed by dotted tool ids (service.tool).
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/glintui/glint/backend/internal/shared/types"
)

// Provider is one registered tool service.
type Provider interface {
	Definition() types.Service
	Execute(ctx context.Context, toolID string, params map[string]any, tctx *types.Context) (*types.Result, error)
}

// Registry manages provider discovery and execution.
type Registry struct {
	services sync.Map
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a provider under its definition id.
func (r *Registry) Register(provider Provider) error {
	def := provider.Definition()
	if def.ID == "" {
		return fmt.Errorf("service ID cannot be empty")
	}
	r.services.Store(def.ID, provider)
	return nil
}

// Clone returns a registry with the same providers. Used to overlay
// session-scoped providers without mutating the shared set.
func (r *Registry) Clone() *Registry {
	clone := NewRegistry()
	r.services.Range(func(key, value any) bool {
		clone.services.Store(key, value)
		return true
	})
	return clone
}

// Unregister removes a provider.
func (r *Registry) Unregister(serviceID string) {
	r.services.Delete(serviceID)
}

// Get retrieves a provider by service id.
func (r *Registry) Get(serviceID string) (Provider, bool) {
	val, ok := r.services.Load(serviceID)
	if !ok {
		return nil, false
	}
	return val.(Provider), true
}

// List returns all service definitions, optionally filtered by category.
func (r *Registry) List(category *types.Category) []types.Service {
	var services []types.Service
	r.services.Range(func(_, value any) bool {
		def := value.(Provider).Definition()
		if category == nil || def.Category == *category {
			services = append(services, def)
		}
		return true
	})
	return services
}

// Execute runs a tool by its dotted id.
func (r *Registry) Execute(ctx context.Context, toolID string, params map[string]any, tctx *types.Context) (*types.Result, error) {
	parts := strings.SplitN(toolID, ".", 2)
	if len(parts) < 2 {
		return failure("invalid tool ID format"), fmt.Errorf("invalid tool ID format: %s", toolID)
	}

	provider, ok := r.Get(parts[0])
	if !ok {
		msg := fmt.Sprintf("service not found: %s", parts[0])
		return failure(msg), fmt.Errorf("%s", msg)
	}

	return provider.Execute(ctx, toolID, params, tctx)
}

// Stats returns registry statistics.
func (r *Registry) Stats() map[string]any {
	var total, totalTools int
	categories := make(map[string]int)

	r.services.Range(func(_, value any) bool {
		def := value.(Provider).Definition()
		total++
		totalTools += len(def.Tools)
		categories[string(def.Category)]++
		return true
	})

	return map[string]any{
		"total_services": total,
		"total_tools":    totalTools,
		"categories":     categories,
	}
}

func failure(msg string) *types.Result {
	return &types.Result{Success: false, Error: &msg}
}
