package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"livescan/internal/broadcast"
	"livescan/internal/config"
	"livescan/internal/metrics"
	"livescan/internal/models"
	"livescan/internal/scraper"
)

type stubStore struct{}

func (stubStore) ListStreamers(context.Context, models.StreamerFilter) ([]models.Streamer, int64, error) {
	return []models.Streamer{{Username: "alice"}}, 1, nil
}

func (stubStore) GetStreamerByUsername(context.Context, string) (*models.Streamer, error) {
	return &models.Streamer{Username: "alice"}, nil
}

func (stubStore) ListQueries(context.Context) ([]string, error) { return []string{"gaming"}, nil }

func (stubStore) ListScans(context.Context, int, int) ([]models.ScanRecord, int64, error) {
	return nil, 0, nil
}

func (stubStore) GetStatistics(context.Context, time.Time) (*models.Statistics, error) {
	return &models.Statistics{}, nil
}

func (stubStore) CountStreamersByQuery(context.Context) ([]models.QueryCount, error) {
	return []models.QueryCount{{Query: "gaming", Count: 1}}, nil
}

func (stubStore) Ping(context.Context) error { return nil }

type stubScanner struct{}

func (stubScanner) Configured() bool { return false }

func (stubScanner) ScanQuery(context.Context, string) (*scraper.ScanOutcome, error) {
	return nil, scraper.ErrNotConfigured
}

func (stubScanner) ScrapeQueries(context.Context, []string) scraper.BatchResult {
	return scraper.BatchResult{}
}

func newTestServer(rateLimit int) *Server {
	cfg := &config.Config{
		Env:                "test",
		CORSOrigins:        "*",
		RateLimitPerMinute: rateLimit,
		SearchQueries:      []string{"gaming"},
		ScrapeInterval:     5 * time.Minute,
	}
	s := New(cfg, nil)
	s.RegisterRoutes(Deps{
		Store:   stubStore{},
		Pinger:  stubStore{},
		Scanner: stubScanner{},
		Hub:     broadcast.NewHub(nil),
		Metrics: metrics.New(stubStore{}),
	})
	return s
}

func get(t *testing.T, s *Server, method, path string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(method, path, nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

func TestRoutesRegistered(t *testing.T) {
	s := newTestServer(100)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/healthz", 200},
		{"GET", "/readyz", 200},
		{"GET", "/health", 200},
		{"GET", "/", 200},
		{"GET", "/api/streamers", 200},
		{"GET", "/api/streamers/alice", 200},
		{"GET", "/api/queries", 200},
		{"GET", "/api/statistics", 200},
		{"GET", "/api/scan-history", 200},
		{"POST", "/api/search-live?query=gaming", 503},
		{"POST", "/api/scrape", 503},
		{"GET", "/metrics", 200},
		{"GET", "/static/app.js", 200},
		{"GET", "/ws", 426},
	}

	for _, tt := range tests {
		resp := get(t, s, tt.method, tt.path)
		if resp.StatusCode != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.want)
		}
	}
}

func TestUnknownAPIRouteUsesJSONEnvelope(t *testing.T) {
	s := newTestServer(100)

	resp := get(t, s, "GET", "/api/nope")
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "error" {
		t.Errorf("status field = %q, want error", body.Status)
	}
}

func TestRateLimitExemptsProbes(t *testing.T) {
	s := newTestServer(2)

	for i := 0; i < 2; i++ {
		if resp := get(t, s, "GET", "/api/queries"); resp.StatusCode != 200 {
			t.Fatalf("request %d = %d, want 200", i, resp.StatusCode)
		}
	}
	if resp := get(t, s, "GET", "/api/queries"); resp.StatusCode != 429 {
		t.Errorf("third request = %d, want 429", resp.StatusCode)
	}
	if resp := get(t, s, "GET", "/healthz"); resp.StatusCode != 200 {
		t.Errorf("/healthz = %d after limit, want 200", resp.StatusCode)
	}
}

func TestMetricsExposeRequests(t *testing.T) {
	s := newTestServer(100)
	get(t, s, "GET", "/api/queries")

	resp := get(t, s, "GET", "/metrics")
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `route="/api/queries"`) {
		t.Error("metrics missing /api/queries request counter")
	}
}
