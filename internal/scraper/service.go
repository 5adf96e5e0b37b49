// Package scraper exposes the caller-facing operations: discover only,
// discover and persist one query, and a resilient batch over many queries.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"livescan/internal/broadcast"
	"livescan/internal/discovery"
	"livescan/internal/models"
)

// failureWriteTimeout bounds the failure ScanRecord write, which runs even
// after the run's own context has expired.
const failureWriteTimeout = 5 * time.Second

// ErrNotConfigured is returned when no upstream credentials are available.
var ErrNotConfigured = errors.New("TikAPI credentials not configured")

// Discoverer runs one discovery pipeline.
type Discoverer interface {
	Discover(ctx context.Context, query string) (*discovery.Result, error)
}

// Store persists scan outcomes.
type Store interface {
	RecordScan(ctx context.Context, query string, identities []string) (*models.ScanSummary, error)
	RecordFailedScan(ctx context.Context, query, message string) (*models.ScanRecord, error)
}

// Publisher delivers events to live subscribers.
type Publisher interface {
	Publish(evt broadcast.Event) int
}

// Observer receives run metrics.
type Observer interface {
	ObserveScan(success bool, found, created int, elapsed time.Duration)
	ObserveLookup(kind string)
}

// ScanOutcome is the result of ScanQuery.
type ScanOutcome struct {
	Query         string
	Identities    []string
	Streamers     []models.Streamer
	New           int
	Updated       int
	FailedLookups int
	Scan          models.ScanRecord
}

// BatchResult aggregates a ScrapeQueries run.
type BatchResult struct {
	TotalFound       int      `json:"total_found"`
	TotalNew         int      `json:"total_new"`
	TotalUpdated     int      `json:"total_updated"`
	QueriesProcessed int      `json:"queries_processed"`
	Errors           []string `json:"errors"`
}

// Service wires discovery, persistence and notification together.
type Service struct {
	discoverer Discoverer
	store      Store
	publisher  Publisher
	observer   Observer
	timeout    time.Duration
	log        *slog.Logger
}

// Options configures a Service. Publisher and Observer are optional.
type Options struct {
	Publisher Publisher
	Observer  Observer
	// Timeout bounds one discovery run; zero disables it.
	Timeout time.Duration
}

// New creates a Service. A nil discoverer yields a Service whose operations
// fail with ErrNotConfigured.
func New(d Discoverer, store Store, opts Options, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{
		discoverer: d,
		store:      store,
		publisher:  opts.Publisher,
		observer:   opts.Observer,
		timeout:    opts.Timeout,
		log:        log,
	}
}

// Configured reports whether an upstream client is wired in.
func (s *Service) Configured() bool {
	return s.discoverer != nil
}

// SearchLiveStreamers discovers the identities live for query without
// persisting anything.
func (s *Service) SearchLiveStreamers(ctx context.Context, query string) ([]string, error) {
	res, err := s.discover(ctx, query)
	if err != nil {
		return nil, err
	}
	return res.Identities, nil
}

// ScanQuery discovers query, persists the identities and appends exactly one
// ScanRecord whatever the outcome. On failure the returned error carries the
// same message that was recorded.
func (s *Service) ScanQuery(ctx context.Context, query string) (*ScanOutcome, error) {
	out, err := s.scan(ctx, query)
	if err != nil {
		return nil, err
	}

	s.publish(broadcast.TypeSearchComplete, map[string]any{
		"query":   out.Query,
		"total":   len(out.Identities),
		"new":     out.New,
		"updated": out.Updated,
	})
	return out, nil
}

// ScrapeQueries scans every query in turn. A failed query is recorded in
// Errors and the batch moves on. One scan_complete event is published at
// the end.
func (s *Service) ScrapeQueries(ctx context.Context, queries []string) BatchResult {
	result := BatchResult{Errors: []string{}}

	for _, q := range queries {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("error scraping query '%s': %v", q, ctx.Err()))
			continue
		}

		out, err := s.scan(ctx, q)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("error scraping query '%s': %s", q, discovery.UserMessage(err)))
			continue
		}

		result.TotalFound += len(out.Identities)
		result.TotalNew += out.New
		result.TotalUpdated += out.Updated
		result.QueriesProcessed++
	}

	s.log.Info("scrape batch complete",
		"queries", len(queries),
		"processed", result.QueriesProcessed,
		"found", result.TotalFound,
		"new", result.TotalNew,
		"errors", len(result.Errors),
	)

	s.publish(broadcast.TypeScanComplete, map[string]any{
		"results": result,
		"queries": queries,
	})
	return result
}

func (s *Service) discover(ctx context.Context, query string) (*discovery.Result, error) {
	if s.discoverer == nil {
		return nil, ErrNotConfigured
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.discoverer.Discover(ctx, query)
	if err != nil {
		return nil, err
	}
	if s.observer != nil {
		for _, o := range res.Lookups {
			s.observer.ObserveLookup(o.Kind())
		}
	}
	return res, nil
}

func (s *Service) scan(ctx context.Context, query string) (*ScanOutcome, error) {
	start := time.Now()

	res, err := s.discover(ctx, query)
	if err != nil {
		return nil, s.fail(ctx, query, discovery.UserMessage(err), err, start)
	}

	summary, err := s.store.RecordScan(ctx, query, res.Identities)
	if err != nil {
		err = fmt.Errorf("store scan: %w", err)
		return nil, s.fail(ctx, query, err.Error(), err, start)
	}

	if s.observer != nil {
		s.observer.ObserveScan(true, len(res.Identities), summary.New, time.Since(start))
	}
	s.log.Info("scan recorded",
		"query", query,
		"found", len(res.Identities),
		"new", summary.New,
		"updated", summary.Updated,
		"failed_lookups", res.FailedLookups(),
	)

	return &ScanOutcome{
		Query:         query,
		Identities:    res.Identities,
		Streamers:     summary.Streamers,
		New:           summary.New,
		Updated:       summary.Updated,
		FailedLookups: res.FailedLookups(),
		Scan:          summary.Scan,
	}, nil
}

// fail writes the failure ScanRecord and returns cause. The write uses a
// context detached from ctx so an expired run is still recorded.
func (s *Service) fail(ctx context.Context, query, message string, cause error, start time.Time) error {
	if s.observer != nil {
		s.observer.ObserveScan(false, 0, 0, time.Since(start))
	}
	s.log.Error("scan failed", "query", query, "error", cause)

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureWriteTimeout)
	defer cancel()
	if _, err := s.store.RecordFailedScan(wctx, query, message); err != nil {
		s.log.Error("failed to record failed scan", "query", query, "error", err)
	}
	return cause
}

func (s *Service) publish(eventType string, data any) {
	if s.publisher == nil {
		return
	}
	n := s.publisher.Publish(broadcast.Event{Type: eventType, Data: data})
	s.log.Debug("event published", "type", eventType, "subscribers", n)
}
