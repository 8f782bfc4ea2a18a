package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/redhat-data-and-ai/polly/internal/config"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	config *config.Config
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{config: cfg}
}

// HandleHealth returns health status
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "healthy",
		"service":         "polly",
		"trigger_mode":    h.config.TriggerMode(),
		"bitbucket_token": h.config.HasToken(),
		"poll_interval":   h.config.Server.PollInterval.String(),
	})
}
