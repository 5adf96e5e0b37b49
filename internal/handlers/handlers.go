package handlers

import (
	"github.com/gofiber/fiber/v3"

	"livescan/internal/config"
)

// PageHandler renders the search page.
type PageHandler struct {
	cfg *config.Config
}

// NewPageHandler creates a new page handler.
func NewPageHandler(cfg *config.Config) *PageHandler {
	return &PageHandler{cfg: cfg}
}

// Index renders the live search page. Results and updates are fetched by
// the page itself from the JSON API and /ws.
func (h *PageHandler) Index(c fiber.Ctx) error {
	return c.Render("index", fiber.Map{
		"Title":            "Live search",
		"Queries":          h.cfg.SearchQueries,
		"TikAPIConfigured": h.cfg.HasTikAPICredentials(),
		"SchedulerEnabled": h.cfg.EnableScheduler,
	})
}
