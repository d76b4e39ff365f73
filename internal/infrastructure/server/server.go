package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glintui/glint/backend/internal/api/http"
	"github.com/glintui/glint/backend/internal/api/middleware"
	"github.com/glintui/glint/backend/internal/api/ws"
	"github.com/glintui/glint/backend/internal/domain/service"
	"github.com/glintui/glint/backend/internal/domain/widgets"
	"github.com/glintui/glint/backend/internal/infrastructure/config"
	"github.com/glintui/glint/backend/internal/infrastructure/logging"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	widgets  *widgets.Manager
	registry *service.Registry
	logger   *logging.Logger
	config   *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing Glint Widget Service",
		zap.String("port", cfg.Server.Port),
		zap.String("proxy_origin", cfg.Proxy.Origin),
	)

	// Initialize widget manager and service registry
	widgetManager := widgets.NewManager()
	serviceRegistry := service.NewRegistry()

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins...)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := http.NewHandlers(widgetManager, serviceRegistry)
	wsHandler := ws.NewHandler(widgetManager, serviceRegistry, ws.Config{
		ProxyOrigin:   cfg.Proxy.Origin,
		Sandbox:       cfg.Proxy.Sandbox,
		ActionTimeout: cfg.Actions.Timeout,
	}, logger)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Widget management
	router.POST("/widgets", handlers.CreateWidget)
	router.GET("/widgets", handlers.ListWidgets)
	router.GET("/widgets/:id", handlers.GetWidget)
	router.PATCH("/widgets/:id", handlers.UpdateWidget)
	router.DELETE("/widgets/:id", handlers.DeleteWidget)
	router.PUT("/widgets/:id/resource", handlers.SetResource)
	router.GET("/widgets/:id/resource", handlers.GetResource)

	// Service management
	router.GET("/services", handlers.ListServices)
	router.POST("/services/execute", handlers.ExecuteService)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		widgets:  widgetManager,
		registry: serviceRegistry,
		logger:   logger,
		config:   cfg,
	}, nil
}

// Registry exposes the service registry for provider registration.
func (s *Server) Registry() *service.Registry {
	return s.registry
}

// Widgets exposes the widget manager.
func (s *Server) Widgets() *widgets.Manager {
	return s.widgets
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")
	s.logger.Sync()
	return nil
}
