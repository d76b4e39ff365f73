// Package ws bridges remote widget content to a server-side frame over
// a WebSocket. The socket client plays the content role: envelopes it
// sends are posted on the frame's content port, and everything the
// host renderer sends back to the content is written to the socket.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/glintui/glint/backend/internal/adapter"
	"github.com/glintui/glint/backend/internal/domain/service"
	"github.com/glintui/glint/backend/internal/domain/widgets"
	"github.com/glintui/glint/backend/internal/frame"
	"github.com/glintui/glint/backend/internal/host"
	"github.com/glintui/glint/backend/internal/infrastructure/logging"
	"github.com/glintui/glint/backend/internal/platform"
	"github.com/glintui/glint/backend/internal/platform/registryhost"
	"github.com/glintui/glint/backend/internal/protocol"
	"github.com/glintui/glint/backend/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin policy is enforced by the CORS layer
	},
}

// Config tunes per-connection rendering.
type Config struct {
	ProxyOrigin   string
	Sandbox       string
	ActionTimeout time.Duration
	FollowUp      registryhost.FollowUpFunc
}

// Handler manages WebSocket connections
type Handler struct {
	widgets  *widgets.Manager
	registry *service.Registry
	cfg      Config
	log      *logging.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(widgets *widgets.Manager, registry *service.Registry, cfg Config, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop()
	}
	return &Handler{
		widgets:  widgets,
		registry: registry,
		cfg:      cfg,
		log:      log,
	}
}

// HandleConnection upgrades the socket and runs one widget session.
// The widget and its resource must exist before the upgrade.
func (h *Handler) HandleConnection(c *gin.Context) {
	widgetID := c.Query("widget")
	w, ok := h.widgets.Get(widgetID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "widget not found"})
		return
	}
	res, ok := h.widgets.Resource(widgetID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "widget has no resource"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.runSession(c.Request.Context(), conn, w, res)
}

type session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	log     *logging.Logger
}

func (s *session) send(data any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(data)
}

func (s *session) sendError(msg string) {
	if err := s.send(map[string]any{"type": "error", "message": msg}); err != nil {
		s.log.Debug("websocket write failed", zap.Error(err))
	}
}

func (h *Handler) runSession(ctx context.Context, conn *websocket.Conn, w *types.Widget, res *types.UIResource) {
	sess := &session{conn: conn, log: h.log}

	store := platform.NewStore(platform.State{})

	// Session-scoped registry: the shared providers plus a widgetstate
	// provider bound to this session's store.
	registry := h.registry.Clone()
	if err := registry.Register(service.NewWidgetStateProvider(store)); err != nil {
		h.log.Error("widgetstate provider registration failed", zap.Error(err))
	}

	hostOpts := []registryhost.Option{
		registryhost.WithWidgetID(w.ID),
		registryhost.WithLogger(h.log),
	}
	if h.cfg.FollowUp != nil {
		hostOpts = append(hostOpts, registryhost.WithFollowUp(h.cfg.FollowUp))
	}
	ph := registryhost.New(registry, store, hostOpts...)

	f := frame.New()
	defer f.Close()

	renderer := host.NewRenderer(f, host.Config{
		AutoResize:    host.ResizeBoth(),
		ProxyOrigin:   h.cfg.ProxyOrigin,
		Sandbox:       h.cfg.Sandbox,
		ActionTimeout: h.cfg.ActionTimeout,
		OnAction:      h.makeActionFunc(ph, w),
		RenderData: func() any {
			return adapter.Snapshot(ph.State())
		},
		Logger: h.log,
	})
	defer renderer.Close()

	// Host-to-content traffic goes out the socket.
	detach := f.ContentPort().Listen(func(msg frame.Message) {
		if err := sess.send(msg.Env); err != nil {
			h.log.Debug("websocket write failed", zap.Error(err))
		}
	})
	defer detach()

	if err := sess.send(map[string]any{
		"type":    "system",
		"message": "Connected to Glint Widget Service",
	}); err != nil {
		return
	}

	if err := renderer.Mount(res); err != nil {
		sess.sendError(err.Error())
		return
	}
	h.sendFrameSync(sess, f)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			h.log.Debug("websocket read closed", zap.Error(err))
			return
		}

		var env protocol.Envelope
		if err := sonic.Unmarshal(raw, &env); err != nil || env.Type == "" {
			sess.sendError("malformed envelope")
			continue
		}

		before := f.Style()
		f.ContentPort().Post(env)
		if f.Style() != before {
			h.sendFrameSync(sess, f)
		}
	}
}

// sendFrameSync mirrors the server-side frame surface to the client so
// it can render the outer iframe.
func (h *Handler) sendFrameSync(sess *session, f *frame.Frame) {
	style := f.Style()
	err := sess.send(map[string]any{
		"type": "frame-sync",
		"frame": map[string]any{
			"src":     f.Src(),
			"srcdoc":  f.SrcDoc(),
			"sandbox": f.SandboxAttr(),
			"width":   style.Width,
			"height":  style.Height,
		},
	})
	if err != nil {
		h.log.Debug("websocket write failed", zap.Error(err))
	}
}

// makeActionFunc maps content actions onto the widget's platform: tool
// calls go through the registry subject to the widget's allowlist,
// prompts and intents become follow-up turns.
func (h *Handler) makeActionFunc(ph *registryhost.Host, w *types.Widget) host.ActionFunc {
	return func(ctx context.Context, action host.Action) (any, error) {
		env := protocol.Envelope{Payload: action.Payload}

		switch action.Kind {
		case protocol.KindTool:
			name := env.String("toolName")
			if !toolAllowed(w, name) {
				return nil, fmt.Errorf("tool not allowed for widget: %s", name)
			}
			return ph.CallTool(ctx, name, env.Object("params"))

		case protocol.KindPrompt:
			if err := ph.SendFollowUp(ctx, env.String("prompt")); err != nil {
				return nil, err
			}
			return map[string]any{"sent": true}, nil

		case protocol.KindIntent:
			prompt := env.String("intent")
			if params := env.Object("params"); len(params) > 0 {
				if raw, err := sonic.Marshal(params); err == nil {
					prompt = prompt + " with params " + string(raw)
				}
			}
			if err := ph.SendFollowUp(ctx, prompt); err != nil {
				return nil, err
			}
			return map[string]any{"sent": true}, nil

		case protocol.KindNotify:
			h.log.Info("widget notification",
				zap.String("widget_id", w.ID),
				zap.String("message", env.String("message")))
			return map[string]any{"acknowledged": true}, nil

		case protocol.KindLink:
			return nil, errors.New("link actions are not handled by the widget service")
		}
		return nil, fmt.Errorf("unhandled action kind %s", action.Kind)
	}
}

func toolAllowed(w *types.Widget, name string) bool {
	// Widget state tools are session-scoped and always permitted.
	if strings.HasPrefix(name, "widgetstate.") {
		return true
	}
	if len(w.ToolIDs) == 0 {
		return true
	}
	for _, id := range w.ToolIDs {
		if id == name {
			return true
		}
	}
	return false
}
