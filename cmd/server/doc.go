// Package main is the entry point for the Glint widget service.
//
// The service hosts embedded widget content: it stores widgets and
// their renderable resources, mounts them into server-side frames, and
// speaks the widget action protocol with remote content over
// WebSockets.
//
// Architecture:
//
//	Dashboard (browser) → Widget Service → Tool providers
//	Widget content      → WebSocket bridge → Host renderer
//
// The server provides:
//   - REST API for widget and resource management
//   - WebSocket sessions bridging content frames
//   - Tool provider registry with per-session widget state
//   - Content proxy page for sandboxed HTML
//   - Rate limiting and CORS
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	./server -port 8000 -proxy https://proxy.glint.example
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
