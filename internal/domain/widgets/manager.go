// Package widgets manages the dashboard's widget and UI resource
// records in memory: named embedded content, the tools each widget may
// call, and one renderable resource per widget with its out-of-band
// metadata. Persistence is out of scope; the manager is the in-process
// source of truth handed to content hosts.
package widgets

import (
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"

	"github.com/glintui/glint/backend/internal/shared/id"
	"github.com/glintui/glint/backend/internal/shared/types"
)

// Manager owns widget and resource records.
type Manager struct {
	mu        sync.RWMutex
	widgets   map[string]*types.Widget
	resources map[string]*types.UIResource // keyed by widget id
	sanitizer *bluemonday.Policy
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		widgets:   make(map[string]*types.Widget),
		resources: make(map[string]*types.UIResource),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Create registers a widget. Descriptions are user-authored and
// rendered in the dashboard, so they are sanitized on the way in.
func (m *Manager) Create(name, description string, toolIDs []string) (*types.Widget, error) {
	if name == "" {
		return nil, fmt.Errorf("widget name cannot be empty")
	}
	if toolIDs == nil {
		toolIDs = []string{}
	}

	now := time.Now()
	w := &types.Widget{
		ID:          id.NewWidgetID().String(),
		Name:        name,
		Description: m.sanitizer.Sanitize(description),
		ToolIDs:     toolIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.widgets {
		if existing.Name == name {
			return nil, fmt.Errorf("widget name already in use: %s", name)
		}
	}
	m.widgets[w.ID] = w

	copied := *w
	return &copied, nil
}

// Get retrieves a widget by id.
func (m *Manager) Get(widgetID string) (*types.Widget, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.widgets[widgetID]
	if !ok {
		return nil, false
	}
	copied := *w
	return &copied, true
}

// List returns all widgets.
func (m *Manager) List() []*types.Widget {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*types.Widget, 0, len(m.widgets))
	for _, w := range m.widgets {
		copied := *w
		out = append(out, &copied)
	}
	return out
}

// Update patches a widget's mutable fields. Nil pointers leave the
// field untouched.
func (m *Manager) Update(widgetID string, name, description *string, toolIDs []string) (*types.Widget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.widgets[widgetID]
	if !ok {
		return nil, fmt.Errorf("widget not found: %s", widgetID)
	}
	if name != nil && *name != "" {
		w.Name = *name
	}
	if description != nil {
		w.Description = m.sanitizer.Sanitize(*description)
	}
	if toolIDs != nil {
		w.ToolIDs = toolIDs
	}
	w.UpdatedAt = time.Now()

	copied := *w
	return &copied, nil
}

// Delete removes a widget and its resource.
func (m *Manager) Delete(widgetID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.widgets[widgetID]; !ok {
		return false
	}
	delete(m.widgets, widgetID)
	delete(m.resources, widgetID)
	return true
}

// SetResource attaches (or replaces) the widget's renderable resource.
// A blob resource with no declared MIME type gets one detected from
// its content.
func (m *Manager) SetResource(widgetID string, res types.Resource, metadata map[string]any) (*types.UIResource, error) {
	if res.MIMEType == "" && len(res.Blob) > 0 {
		res.MIMEType = mimetype.Detect(res.Blob).String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.widgets[widgetID]; !ok {
		return nil, fmt.Errorf("widget not found: %s", widgetID)
	}

	now := time.Now()
	record := &types.UIResource{
		ID:        id.NewResourceID().String(),
		WidgetID:  widgetID,
		Resource:  res,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev, ok := m.resources[widgetID]; ok {
		record.ID = prev.ID
		record.CreatedAt = prev.CreatedAt
	}
	m.resources[widgetID] = record

	copied := *record
	return &copied, nil
}

// Resource returns the widget's resource record.
func (m *Manager) Resource(widgetID string) (*types.UIResource, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.resources[widgetID]
	if !ok {
		return nil, false
	}
	copied := *r
	return &copied, true
}

// ExportResource serializes the widget's resource record for transfer
// to a remote content host.
func (m *Manager) ExportResource(widgetID string) ([]byte, error) {
	r, ok := m.Resource(widgetID)
	if !ok {
		return nil, fmt.Errorf("no resource for widget: %s", widgetID)
	}
	return sonic.Marshal(r)
}

// Stats returns manager statistics.
func (m *Manager) Stats() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]any{
		"total_widgets":   len(m.widgets),
		"total_resources": len(m.resources),
	}
}
