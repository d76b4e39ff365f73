package types

import "time"

// Resource is the embedded content payload handed to the host renderer
// for display: either inline text (srcdoc HTML) or a blob, never both.
type Resource struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType"`
	Text     string `json:"text,omitempty"`
	Blob     []byte `json:"blob,omitempty"`
}

// MetaPreferredFrameSize is the out-of-band metadata key carrying the
// resource's preferred frame size: a 2-element array of CSS lengths
// [width, height], applied once at mount.
const MetaPreferredFrameSize = "preferred-frame-size"

// Widget is a dashboard widget: named embedded content plus the tools
// it is allowed to call.
type Widget struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ToolIDs     []string  `json:"tool_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UIResource is a widget's renderable resource with its out-of-band
// metadata (preferred frame size, display hints).
type UIResource struct {
	ID        string         `json:"id"`
	WidgetID  string         `json:"widget_id"`
	Resource  Resource       `json:"resource"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// PreferredFrameSize extracts the preferred-frame-size hint from the
// resource metadata. ok is false when the key is absent or malformed.
func (r *UIResource) PreferredFrameSize() (width, height string, ok bool) {
	raw, present := r.Metadata[MetaPreferredFrameSize]
	if !present {
		return "", "", false
	}
	switch v := raw.(type) {
	case [2]string:
		return v[0], v[1], true
	case []string:
		if len(v) == 2 {
			return v[0], v[1], true
		}
	case []any:
		if len(v) == 2 {
			w, wok := v[0].(string)
			h, hok := v[1].(string)
			if wok && hok {
				return w, h, true
			}
		}
	}
	return "", "", false
}
