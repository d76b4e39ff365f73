package adapter

import "github.com/glintui/glint/backend/internal/platform"

// Display defaults applied when the platform leaves a field unset. A
// snapshot is never partially populated.
const (
	DefaultLocale      = "en-US"
	DefaultTheme       = "light"
	DefaultDisplayMode = "inline"
)

// RenderData is the immutable point-in-time copy of the platform's
// render context published to the content.
type RenderData struct {
	ToolInput   map[string]any `json:"toolInput"`
	ToolOutput  map[string]any `json:"toolOutput"`
	WidgetState map[string]any `json:"widgetState"`
	Locale      string         `json:"locale"`
	Theme       string         `json:"theme"`
	DisplayMode string         `json:"displayMode"`
	MaxHeight   int            `json:"maxHeight,omitempty"`
}

// Snapshot assembles a RenderData from the platform state, defaulting
// every unavailable field explicitly.
func Snapshot(s platform.State) RenderData {
	rd := RenderData{
		ToolInput:   copyMap(s.ToolInput),
		ToolOutput:  copyMap(s.ToolOutput),
		WidgetState: copyMap(s.WidgetState),
		Locale:      s.Locale,
		Theme:       s.Theme,
		DisplayMode: s.DisplayMode,
		MaxHeight:   s.MaxHeight,
	}
	if rd.Locale == "" {
		rd.Locale = DefaultLocale
	}
	if rd.Theme == "" {
		rd.Theme = DefaultTheme
	}
	if rd.DisplayMode == "" {
		rd.DisplayMode = DefaultDisplayMode
	}
	return rd
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
