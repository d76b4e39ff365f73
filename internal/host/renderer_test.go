package host_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glintui/glint/backend/internal/frame"
	"github.com/glintui/glint/backend/internal/host"
	"github.com/glintui/glint/backend/internal/protocol"
	"github.com/glintui/glint/backend/internal/proxy"
	"github.com/glintui/glint/backend/internal/shared/types"
)

// contentView collects every envelope the host sends toward the content.
type contentView struct {
	ch chan protocol.Envelope
}

func observeContent(f *frame.Frame) *contentView {
	v := &contentView{ch: make(chan protocol.Envelope, 32)}
	f.ContentPort().Listen(func(m frame.Message) { v.ch <- m.Env })
	return v
}

func (v *contentView) next(t *testing.T) protocol.Envelope {
	t.Helper()
	select {
	case env := <-v.ch:
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("no envelope arrived")
		return protocol.Envelope{}
	}
}

func (v *contentView) quiet(d time.Duration) []protocol.Envelope {
	var got []protocol.Envelope
	deadline := time.After(d)
	for {
		select {
		case env := <-v.ch:
			got = append(got, env)
		case <-deadline:
			return got
		}
	}
}

func htmlResource(html string) *types.UIResource {
	return &types.UIResource{
		Resource: types.Resource{
			URI:      "ui://widget/demo",
			MIMEType: "text/html",
			Text:     html,
		},
	}
}

func TestActionAckThenResponse(t *testing.T) {
	f := frame.New()
	defer f.Close()
	view := observeContent(f)

	r := host.NewRenderer(f, host.Config{
		OnAction: func(ctx context.Context, a host.Action) (any, error) {
			assert.Equal(t, protocol.KindTool, a.Kind)
			assert.Equal(t, "weather.lookup", a.Payload["toolName"])
			return map[string]any{"temp": 21}, nil
		},
	})
	defer r.Close()
	require.NoError(t, r.Mount(htmlResource("<p>w</p>")))

	f.ContentPort().Post(protocol.Envelope{
		Type:      protocol.TypeTool,
		MessageID: "msg_t1",
		Payload:   map[string]any{"toolName": "weather.lookup", "params": map[string]any{}},
	})

	ack := view.next(t)
	assert.Equal(t, protocol.TypeMessageReceived, ack.Type)
	assert.Equal(t, "msg_t1", ack.MessageID)

	resp := view.next(t)
	assert.Equal(t, protocol.TypeMessageResponse, resp.Type)
	assert.Equal(t, "msg_t1", resp.MessageID)
	result, _ := resp.Payload["response"].(map[string]any)
	assert.Equal(t, 21, result["temp"])
}

func TestActionErrorNormalized(t *testing.T) {
	f := frame.New()
	defer f.Close()
	view := observeContent(f)

	r := host.NewRenderer(f, host.Config{
		OnAction: func(context.Context, host.Action) (any, error) {
			return nil, errors.New("backend unavailable")
		},
	})
	defer r.Close()

	f.ContentPort().Post(protocol.Envelope{Type: protocol.TypePrompt, MessageID: "msg_p1",
		Payload: map[string]any{"prompt": "hello"}})

	view.next(t) // ack
	resp := view.next(t)
	payload, ok := resp.Payload["error"].(protocol.ErrorPayload)
	require.True(t, ok)
	assert.Equal(t, "backend unavailable", payload.Message)
	assert.Equal(t, "Error", payload.Name)
}

func TestActionTimeoutSingleTerminal(t *testing.T) {
	f := frame.New()
	defer f.Close()
	view := observeContent(f)

	block := make(chan struct{})
	defer close(block)

	r := host.NewRenderer(f, host.Config{
		ActionTimeout: 30 * time.Millisecond,
		OnAction: func(ctx context.Context, a host.Action) (any, error) {
			<-block // never settles within budget
			return "late", nil
		},
	})
	defer r.Close()

	f.ContentPort().Post(protocol.Envelope{Type: protocol.TypeNotify, MessageID: "msg_n1",
		Payload: map[string]any{"message": "hi"}})

	view.next(t) // ack
	got := view.quiet(300 * time.Millisecond)
	require.Len(t, got, 1, "exactly one terminal response")
	payload, ok := got[0].Payload["error"].(protocol.ErrorPayload)
	require.True(t, ok)
	assert.Equal(t, "TimeoutError", payload.Name)
}

func TestSizingAxisIsolation(t *testing.T) {
	f := frame.New()
	defer f.Close()

	r := host.NewRenderer(f, host.Config{
		AutoResize: host.ResizePolicy{Width: true, Height: false},
	})
	defer r.Close()
	require.NoError(t, r.Mount(htmlResource("<p>w</p>")))

	f.ContentPort().Post(protocol.Envelope{
		Type:    protocol.TypeSizeChange,
		Payload: map[string]any{"width": float64(100), "height": float64(100)},
	})

	style := f.Style()
	assert.Equal(t, "100px", style.Width)
	assert.Equal(t, "100%", style.Height, "disabled axis keeps its prior value")
}

func TestSizeChangeWithUnits(t *testing.T) {
	f := frame.New()
	defer f.Close()

	r := host.NewRenderer(f, host.Config{AutoResize: host.ResizeBoth()})
	defer r.Close()

	f.ContentPort().Post(protocol.Envelope{
		Type:    protocol.TypeSizeChange,
		Payload: map[string]any{"width": "50vw", "height": "300"},
	})

	style := f.Style()
	assert.Equal(t, "50vw", style.Width)
	assert.Equal(t, "300px", style.Height)
}

func TestPreferredSizePrecedence(t *testing.T) {
	f := frame.New()
	defer f.Close()

	r := host.NewRenderer(f, host.Config{AutoResize: host.ResizeBoth()})
	defer r.Close()

	res := htmlResource("<p>w</p>")
	res.Metadata = map[string]any{
		types.MetaPreferredFrameSize: []any{"200px", "100px"},
	}
	require.NoError(t, r.Mount(res))

	style := f.Style()
	assert.Equal(t, "200px", style.Width)
	assert.Equal(t, "100px", style.Height)
}

func TestRenderDataRequest(t *testing.T) {
	f := frame.New()
	defer f.Close()
	view := observeContent(f)

	r := host.NewRenderer(f, host.Config{
		RenderData: func() any { return map[string]any{"theme": "dark"} },
	})
	defer r.Close()

	f.ContentPort().Post(protocol.Envelope{Type: protocol.TypeRequestRenderData})

	env := view.next(t)
	assert.Equal(t, protocol.TypeRenderData, env.Type)
	data, _ := env.Payload["renderData"].(map[string]any)
	assert.Equal(t, "dark", data["theme"])
}

func TestProxyMountRoundTrip(t *testing.T) {
	const origin = "https://sandbox-proxy.example"

	f := frame.New()
	defer f.Close()

	var channel *proxy.Channel
	f.OnNavigate(func(fr *frame.Frame, url string) {
		assert.Equal(t, origin+"/?contentType=rawhtml", url)
		channel = proxy.Open(fr, nil)
	})

	r := host.NewRenderer(f, host.Config{
		ProxyOrigin: origin,
		Sandbox:     "allow-forms",
	})
	defer r.Close()

	require.NoError(t, r.Mount(htmlResource("<form><input></form>")))

	require.NotNil(t, channel, "navigation must hit the proxy page")
	require.Equal(t, proxy.Serving, channel.State(), "payload delivered after readiness")
	inner := channel.Inner()
	require.NotNil(t, inner)
	assert.True(t, inner.HasSandboxToken("allow-forms"))
	assert.True(t, inner.HasSandboxToken("allow-scripts"))
	assert.Contains(t, inner.SrcDoc(), "<form><input></form>")
	assert.Empty(t, f.SrcDoc(), "raw HTML never loads into the outer frame")
}

func TestProxyReadyFromStrangerIgnored(t *testing.T) {
	f := frame.New()
	defer f.Close()

	delivered := 0
	f.ContentPort().Listen(func(m frame.Message) {
		if m.Env.Kind() == protocol.KindHTMLContent {
			delivered++
		}
	})

	r := host.NewRenderer(f, host.Config{ProxyOrigin: "https://proxy.example"})
	defer r.Close()
	require.NoError(t, r.Mount(htmlResource("<p>w</p>")))

	stranger, _ := frame.Pair()
	f.HostPort().Deliver(protocol.ProxyReady(), stranger)
	assert.Equal(t, 0, delivered, "transfer withheld from non-frame sources")

	f.HostPort().Deliver(protocol.ProxyReady(), f.ContentPort())
	assert.Equal(t, 1, delivered)
}

func TestMountRemoteURL(t *testing.T) {
	f := frame.New()
	defer f.Close()

	r := host.NewRenderer(f, host.Config{})
	defer r.Close()

	res := &types.UIResource{Resource: types.Resource{
		URI:      "ui://widget/remote",
		MIMEType: "text/uri-list",
		Text:     "# comment\nhttps://widgets.example/app\n",
	}}
	require.NoError(t, r.Mount(res))
	assert.Equal(t, "https://widgets.example/app", f.Src())
}

func TestMountUnsupportedResource(t *testing.T) {
	f := frame.New()
	defer f.Close()

	r := host.NewRenderer(f, host.Config{})
	defer r.Close()

	res := &types.UIResource{Resource: types.Resource{URI: "ui://widget/x", MIMEType: "image/png"}}
	assert.Error(t, r.Mount(res))
}
