package frame

import (
	"sort"
	"strings"
	"sync"

	"github.com/glintui/glint/backend/internal/shared/id"
)

// Style is the frame's layout box. Values are CSS length strings.
type Style struct {
	Width  string
	Height string
}

// NavigateFunc attaches page behavior when a frame is pointed at a URL.
type NavigateFunc func(f *Frame, url string)

// Frame is one embedded view: a pair of linked ports plus the mutable
// surface the host controls. The host side mutates the frame; content
// code only ever sees the content port.
type Frame struct {
	mu       sync.Mutex
	id       id.FrameID
	src      string
	srcDoc   string
	sandbox  []string
	style    Style
	host     *Port
	content  *Port
	navigate NavigateFunc
}

// New creates a detached frame with default full-size style.
func New() *Frame {
	host, content := Pair()
	return &Frame{
		id:      id.NewFrameID(),
		style:   Style{Width: "100%", Height: "100%"},
		host:    host,
		content: content,
	}
}

// ID returns the frame's id.
func (f *Frame) ID() id.FrameID { return f.id }

// HostPort returns the endpoint the embedding host talks on.
func (f *Frame) HostPort() *Port { return f.host }

// ContentPort returns the endpoint handed to the embedded content.
func (f *Frame) ContentPort() *Port { return f.content }

// OnNavigate installs the hook invoked by Navigate.
func (f *Frame) OnNavigate(fn NavigateFunc) {
	f.mu.Lock()
	f.navigate = fn
	f.mu.Unlock()
}

// Navigate points the frame at a URL and fires the navigation hook.
func (f *Frame) Navigate(url string) {
	f.mu.Lock()
	f.src = url
	f.srcDoc = ""
	fn := f.navigate
	f.mu.Unlock()

	if fn != nil {
		fn(f, url)
	}
}

// SetSrcDoc loads inline HTML into the frame.
func (f *Frame) SetSrcDoc(html string) {
	f.mu.Lock()
	f.srcDoc = html
	f.src = ""
	f.mu.Unlock()
}

// SetSrc points the frame at a remote URL without firing navigation hooks.
func (f *Frame) SetSrc(url string) {
	f.mu.Lock()
	f.src = url
	f.srcDoc = ""
	f.mu.Unlock()
}

// SrcDoc returns the inline HTML, or "" when the frame has a URL source.
func (f *Frame) SrcDoc() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.srcDoc
}

// Src returns the URL source, or "" when the frame has inline HTML.
func (f *Frame) Src() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.src
}

// SetSandbox replaces the sandbox token set. Duplicates collapse.
func (f *Frame) SetSandbox(tokens []string) {
	seen := make(map[string]bool, len(tokens))
	uniq := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		uniq = append(uniq, t)
	}

	f.mu.Lock()
	f.sandbox = uniq
	f.mu.Unlock()
}

// Sandbox returns a copy of the sandbox token set.
func (f *Frame) Sandbox() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sandbox...)
}

// SandboxAttr renders the token set as the space-separated attribute
// value, sorted for stable comparison.
func (f *Frame) SandboxAttr() string {
	tokens := f.Sandbox()
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// HasSandboxToken reports whether the token is present.
func (f *Frame) HasSandboxToken(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.sandbox {
		if t == token {
			return true
		}
	}
	return false
}

// SetWidth applies a CSS length to the width axis only.
func (f *Frame) SetWidth(v string) {
	f.mu.Lock()
	f.style.Width = v
	f.mu.Unlock()
}

// SetHeight applies a CSS length to the height axis only.
func (f *Frame) SetHeight(v string) {
	f.mu.Lock()
	f.style.Height = v
	f.mu.Unlock()
}

// Style returns the current layout box.
func (f *Frame) Style() Style {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.style
}

// Close tears down both ports.
func (f *Frame) Close() {
	f.host.Close()
	f.content.Close()
}
