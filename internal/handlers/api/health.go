package api

import (
	"github.com/gofiber/fiber/v3"

	"livescan/internal/config"
	"livescan/internal/models"
)

// StatusHandler reports service configuration and scheduler state.
type StatusHandler struct {
	cfg         *config.Config
	scheduler   func() bool
	subscribers func() int
}

// NewStatusHandler creates a new status handler. Either func may be nil.
func NewStatusHandler(cfg *config.Config, schedulerRunning func() bool, subscribers func() int) *StatusHandler {
	return &StatusHandler{cfg: cfg, scheduler: schedulerRunning, subscribers: subscribers}
}

// Health handles GET /health.
func (h *StatusHandler) Health(c fiber.Ctx) error {
	resp := models.HealthResponse{
		Status:           "healthy",
		Queries:          h.cfg.SearchQueries,
		ScrapeInterval:   h.cfg.ScrapeInterval.String(),
		TikAPIConfigured: h.cfg.HasTikAPICredentials(),
	}
	if resp.Queries == nil {
		resp.Queries = []string{}
	}
	if h.scheduler != nil {
		resp.SchedulerRunning = h.scheduler()
	}
	if h.subscribers != nil {
		resp.Subscribers = h.subscribers()
	}
	return c.JSON(resp)
}
