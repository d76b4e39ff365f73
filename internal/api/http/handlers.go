// Package http provides the gin handlers for the widget API: widget
// CRUD, resource attachment, service discovery, tool execution, and
// the content proxy page.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glintui/glint/backend/internal/domain/service"
	"github.com/glintui/glint/backend/internal/domain/widgets"
	"github.com/glintui/glint/backend/internal/proxy"
	"github.com/glintui/glint/backend/internal/shared/types"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	widgets  *widgets.Manager
	registry *service.Registry
}

// NewHandlers creates a new handler set
func NewHandlers(widgets *widgets.Manager, registry *service.Registry) *Handlers {
	return &Handlers{
		widgets:  widgets,
		registry: registry,
	}
}

// Root serves double duty: with contentType=rawhtml it is the content
// proxy page, otherwise it is the liveness check.
func (h *Handlers) Root(c *gin.Context) {
	if c.Query("contentType") == proxy.PageContentType {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(proxy.PageHTML))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Glint Widget Service",
		"version": "0.1.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"widgets":          h.widgets.Stats(),
		"service_registry": h.registry.Stats(),
	})
}

type createWidgetRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	ToolIDs     []string `json:"tool_ids"`
}

// CreateWidget registers a new widget
func (h *Handlers) CreateWidget(c *gin.Context) {
	var req createWidgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.widgets.Create(req.Name, req.Description, req.ToolIDs)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"widget": w})
}

// ListWidgets lists all widgets
func (h *Handlers) ListWidgets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"widgets": h.widgets.List(),
		"stats":   h.widgets.Stats(),
	})
}

// GetWidget retrieves one widget
func (h *Handlers) GetWidget(c *gin.Context) {
	w, ok := h.widgets.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "widget not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"widget": w})
}

type updateWidgetRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	ToolIDs     []string `json:"tool_ids"`
}

// UpdateWidget patches widget fields
func (h *Handlers) UpdateWidget(c *gin.Context) {
	var req updateWidgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.widgets.Update(c.Param("id"), req.Name, req.Description, req.ToolIDs)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"widget": w})
}

// DeleteWidget removes a widget
func (h *Handlers) DeleteWidget(c *gin.Context) {
	id := c.Param("id")
	if !h.widgets.Delete(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "widget not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "widget_id": id})
}

type setResourceRequest struct {
	URI      string         `json:"uri"`
	MIMEType string         `json:"mimeType"`
	Text     string         `json:"text"`
	Blob     []byte         `json:"blob"`
	Metadata map[string]any `json:"metadata"`
}

// SetResource attaches renderable content to a widget
func (h *Handlers) SetResource(c *gin.Context) {
	var req setResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.widgets.SetResource(c.Param("id"), types.Resource{
		URI:      req.URI,
		MIMEType: req.MIMEType,
		Text:     req.Text,
		Blob:     req.Blob,
	}, req.Metadata)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resource": res})
}

// GetResource returns a widget's resource record
func (h *Handlers) GetResource(c *gin.Context) {
	res, ok := h.widgets.Resource(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resource": res})
}

// ListServices lists registered tool services
func (h *Handlers) ListServices(c *gin.Context) {
	var category *types.Category
	if s := c.Query("category"); s != "" {
		cat := types.Category(s)
		category = &cat
	}

	services := h.registry.List(category)
	c.JSON(http.StatusOK, gin.H{
		"services": services,
		"stats":    h.registry.Stats(),
	})
}

type executeRequest struct {
	ToolID   string         `json:"tool_id" binding:"required"`
	Params   map[string]any `json:"params"`
	WidgetID string         `json:"widget_id"`
}

// ExecuteService runs a tool by dotted id
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	tctx := &types.Context{}
	if req.WidgetID != "" {
		tctx.WidgetID = &req.WidgetID
	}

	// Execution failures come back as unsuccessful results, not 5xx;
	// the registry always returns a result alongside any error.
	result, _ := h.registry.Execute(ctx, req.ToolID, req.Params, tctx)
	c.JSON(http.StatusOK, gin.H{"result": result})
}
