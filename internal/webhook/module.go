// Package webhook relays inbound lead submissions to TrackDrive and Google Sheets.
package webhook

import (
	apphttp "webhook_relay_backend/internal/http"
	"webhook_relay_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is the webhook module implementing http.Module.
type Module struct {
	handler *Handler
	limiter *httpkit.IPRateLimiter
}

// NewModule creates the webhook module. limiter may be nil.
func NewModule(service *Service, limiter *httpkit.IPRateLimiter) *Module {
	return &Module{
		handler: NewHandler(service),
		limiter: limiter,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts POST /webhook.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	handlers := make([]gin.HandlerFunc, 0, 2)
	if m.limiter != nil {
		handlers = append(handlers, m.limiter.RateLimit())
	}
	handlers = append(handlers, m.handler.HandleWebhook)
	ctx.Engine.POST("/webhook", handlers...)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
