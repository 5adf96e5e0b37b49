package server

import (
	"livescan/internal/broadcast"
	"livescan/internal/handlers"
	"livescan/internal/handlers/api"
	"livescan/internal/metrics"
)

// Deps are the components the routes are served from.
type Deps struct {
	Store   api.Store
	Pinger  handlers.Pinger
	Scanner api.Scanner
	Hub     *broadcast.Hub
	Metrics *metrics.Metrics
	// SchedulerRunning reports the scrape job state; nil means never.
	SchedulerRunning func() bool
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(d Deps) {
	if d.Metrics != nil {
		s.App.Use(d.Metrics.Middleware())
		s.App.Get("/metrics", d.Metrics.Handler())
	}

	// Initialize handlers
	probeHandler := handlers.NewProbeHandler(d.Pinger)
	pageHandler := handlers.NewPageHandler(s.Cfg)
	streamerHandler := api.NewStreamerHandler(d.Store)
	reportHandler := api.NewReportHandler(d.Store)
	searchHandler := api.NewSearchHandler(d.Scanner, s.Cfg)

	var subscribers func() int
	if d.Hub != nil {
		subscribers = d.Hub.Count
	}
	statusHandler := api.NewStatusHandler(s.Cfg, d.SchedulerRunning, subscribers)

	// Probes
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/health", statusHandler.Health)

	// Frontend
	s.App.Get("/", pageHandler.Index)
	if d.Hub != nil {
		s.App.Get("/ws", d.Hub.Handler())
	}

	// JSON API
	apiGroup := s.App.Group("/api")
	apiGroup.Get("/streamers", streamerHandler.List)
	apiGroup.Get("/streamers/:username", streamerHandler.Get)
	apiGroup.Get("/queries", streamerHandler.Queries)
	apiGroup.Get("/statistics", reportHandler.Statistics)
	apiGroup.Get("/scan-history", reportHandler.ScanHistory)
	apiGroup.Post("/search-live", searchHandler.SearchLive)
	apiGroup.Post("/scrape", searchHandler.Scrape)
}
