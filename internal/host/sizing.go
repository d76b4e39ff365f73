package host

import (
	"strconv"

	"github.com/glintui/glint/backend/internal/frame"
	"github.com/glintui/glint/backend/internal/protocol"
)

// ResizePolicy enables dynamic resizing per axis. A disabled axis is
// left untouched by ui-size-change, not reset to a default; the other
// axis still updates in isolation.
type ResizePolicy struct {
	Width  bool
	Height bool
}

// ResizeBoth enables dynamic resizing on both axes.
func ResizeBoth() ResizePolicy { return ResizePolicy{Width: true, Height: true} }

// ResizeNone disables dynamic resizing entirely.
func ResizeNone() ResizePolicy { return ResizePolicy{} }

// applySize applies a ui-size-change payload to the frame under the
// policy.
func applySize(f *frame.Frame, policy ResizePolicy, env protocol.Envelope) {
	if policy.Width {
		if w, ok := cssLength(env.Payload["width"]); ok {
			f.SetWidth(w)
		}
	}
	if policy.Height {
		if h, ok := cssLength(env.Payload["height"]); ok {
			f.SetHeight(h)
		}
	}
}

// cssLength renders a payload dimension as a CSS length. Bare numbers
// gain a px unit; strings carrying their own unit pass through.
func cssLength(v any) (string, bool) {
	switch n := v.(type) {
	case float64:
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10) + "px", true
		}
		return strconv.FormatFloat(n, 'f', -1, 64) + "px", true
	case int:
		return strconv.Itoa(n) + "px", true
	case string:
		if n == "" {
			return "", false
		}
		if _, err := strconv.ParseFloat(n, 64); err == nil {
			return n + "px", true
		}
		return n, true
	}
	return "", false
}
