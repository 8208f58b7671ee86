package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// WebhookSource provides the public callback base URL
type WebhookSource interface {
	URL() string
	Refresh(ctx context.Context) (string, error)
}

// HealthHandler handles health check requests
type HealthHandler struct {
	Version      string
	webhook      WebhookSource
	ping         func() error
	integrations map[string]bool
}

// NewHealthHandler creates a new health handler. ping may be nil when no database is configured.
func NewHealthHandler(version string, webhook WebhookSource, ping func() error, integrations map[string]bool) *HealthHandler {
	return &HealthHandler{
		Version:      version,
		webhook:      webhook,
		ping:         ping,
		integrations: integrations,
	}
}

// Root reports that the server is up
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "Calling agent server is running",
	})
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	db := "disabled"
	if h.ping != nil {
		db = "connected"
		if err := h.ping(); err != nil {
			db = "unavailable"
		}
	}

	return c.JSON(fiber.Map{
		"status":       "healthy",
		"message":      "Call Agent is operational",
		"version":      h.Version,
		"webhook_url":  h.webhook.URL(),
		"database":     db,
		"integrations": h.integrations,
	})
}

// CurrentWebhook returns the active callback base URL
func (h *HealthHandler) CurrentWebhook(c *fiber.Ctx) error {
	url := h.webhook.URL()
	if url == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"webhook_url": "",
			"status":      "unknown",
		})
	}
	return c.JSON(fiber.Map{"webhook_url": url, "status": "active"})
}

// RefreshWebhook re-runs tunnel discovery
func (h *HealthHandler) RefreshWebhook(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 90*time.Second)
	defer cancel()

	url, err := h.webhook.Refresh(ctx)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":  err.Error(),
			"status": "failed",
		})
	}
	return c.JSON(fiber.Map{"status": "refreshed", "webhook_url": url})
}
