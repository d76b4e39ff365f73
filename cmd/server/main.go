package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/glintui/glint/backend/internal/domain/service"
	"github.com/glintui/glint/backend/internal/infrastructure/config"
	"github.com/glintui/glint/backend/internal/infrastructure/server"
	"github.com/glintui/glint/backend/internal/platform"
)

func main() {
	// Parse flags
	port := flag.String("port", "", "Server port (overrides PORT)")
	proxyOrigin := flag.String("proxy", "", "Content proxy origin (overrides PROXY_ORIGIN)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *proxyOrigin != "" {
		cfg.Proxy.Origin = *proxyOrigin
	}

	// Create server
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Built-in providers. Session handlers overlay their own
	// widgetstate provider; this one backs the REST execute path.
	if err := srv.Registry().Register(service.NewWidgetStateProvider(platform.NewStore(platform.State{}))); err != nil {
		log.Printf("Warning: failed to register widgetstate provider: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
