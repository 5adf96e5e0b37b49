package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"livescan/internal/scraper"
)

// BatchScraper runs one scrape over a list of queries.
type BatchScraper interface {
	ScrapeQueries(ctx context.Context, queries []string) scraper.BatchResult
}

// ScrapeJob periodically scrapes the configured queries.
type ScrapeJob struct {
	scraper  BatchScraper
	queries  []string
	interval time.Duration
	log      *slog.Logger
	running  atomic.Bool
}

// NewScrapeJob creates a new scrape job.
func NewScrapeJob(s BatchScraper, queries []string, interval time.Duration, log *slog.Logger) *ScrapeJob {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &ScrapeJob{
		scraper:  s,
		queries:  queries,
		interval: interval,
		log:      log,
	}
}

// Running reports whether the loop started by Start is active.
func (j *ScrapeJob) Running() bool {
	return j != nil && j.running.Load()
}

// Start begins the background scrape loop and blocks until ctx is done.
func (j *ScrapeJob) Start(ctx context.Context) {
	if len(j.queries) == 0 || j.interval <= 0 {
		j.log.Warn("scrape job not started", "queries", len(j.queries), "interval", j.interval)
		return
	}

	j.running.Store(true)
	defer j.running.Store(false)

	j.log.Info("scrape job started", "interval", j.interval, "queries", j.queries)

	// Run immediately on start
	j.runOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info("scrape job stopped")
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *ScrapeJob) runOnce(ctx context.Context) {
	start := time.Now()
	res := j.scraper.ScrapeQueries(ctx, j.queries)
	j.log.Info("scheduled scrape finished",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"processed", res.QueriesProcessed,
		"found", res.TotalFound,
		"new", res.TotalNew,
		"updated", res.TotalUpdated,
		"errors", len(res.Errors),
	)
	for _, msg := range res.Errors {
		j.log.Warn("scheduled scrape error", "error", msg)
	}
}
