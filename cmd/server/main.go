package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"livescan/internal/broadcast"
	"livescan/internal/config"
	"livescan/internal/db"
	"livescan/internal/discovery"
	"livescan/internal/jobs"
	"livescan/internal/logging"
	"livescan/internal/metrics"
	"livescan/internal/scraper"
	"livescan/internal/server"
	"livescan/internal/tikapi"
)

func main() {
	cfg := config.Load()

	log := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})

	// Optional YAML overrides for queries and scheduling
	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		log.Error("failed to load YAML config", "error", err)
		os.Exit(1)
	}
	cfg.ApplyYAML(yamlCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	log.Info("migrations completed successfully")

	hub := broadcast.NewHub(log.With("component", "broadcast"))
	m := metrics.New(database)

	var discoverer scraper.Discoverer
	if cfg.HasTikAPICredentials() {
		client := tikapi.NewClient(cfg.TikAPIBaseURL, cfg.TikAPIKey, cfg.TikAPIAccountKey, cfg.TikAPITimeout)
		discoverer = discovery.New(client, discovery.Options{
			FanOutLimit: cfg.FanOutLimit,
			Concurrency: cfg.FanOutConcurrency,
		}, log.With("component", "discovery"))
	} else {
		log.Warn("TikAPI credentials not configured; set TIKAPI_KEY and TIKAPI_ACCOUNT_KEY to enable searches")
	}

	svc := scraper.New(discoverer, database, scraper.Options{
		Publisher: hub,
		Observer:  m,
		Timeout:   cfg.SearchTimeout,
	}, log.With("component", "scraper"))

	// Scheduled scraping is opt-in
	var job *jobs.ScrapeJob
	if cfg.EnableScheduler && svc.Configured() {
		job = jobs.NewScrapeJob(svc, cfg.SearchQueries, cfg.ScrapeInterval, log.With("component", "scheduler"))
		go job.Start(ctx)
	} else {
		log.Info("scheduled scraping disabled; searches run on demand only")
	}

	srv := server.New(cfg, log.With("component", "http"))
	srv.RegisterRoutes(server.Deps{
		Store:            database,
		Pinger:           database,
		Scanner:          svc,
		Hub:              hub,
		Metrics:          m,
		SchedulerRunning: job.Running,
	})

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Error("server error", "error", err)
		}
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("server exited")
}
