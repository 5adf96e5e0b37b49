package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"livescan/internal/models"
)

type fakeCounter struct {
	counts []models.QueryCount
	err    error
}

func (f fakeCounter) CountStreamersByQuery(context.Context) ([]models.QueryCount, error) {
	return f.counts, f.err
}

func TestObserveScan(t *testing.T) {
	m := New(nil)

	m.ObserveScan(true, 3, 2, 120*time.Millisecond)
	m.ObserveScan(false, 0, 0, time.Second)

	if got := testutil.ToFloat64(m.scansTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("success scans = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.scansTotal.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed scans = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.discoveredTotal); got != 3 {
		t.Errorf("discovered = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.newTotal); got != 2 {
		t.Errorf("new = %v, want 2", got)
	}
}

func TestObserveLookup(t *testing.T) {
	m := New(nil)
	m.ObserveLookup("ok")
	m.ObserveLookup("response")
	m.ObserveLookup("response")

	if got := testutil.ToFloat64(m.lookupsTotal.WithLabelValues("response")); got != 2 {
		t.Errorf("response lookups = %v, want 2", got)
	}
}

func TestStreamerCollector(t *testing.T) {
	c := &StreamerCollector{store: fakeCounter{counts: []models.QueryCount{
		{Query: "gaming", Count: 4},
		{Query: "music", Count: 1},
	}}}

	if n := testutil.CollectAndCount(c); n != 2 {
		t.Errorf("collected %d metrics, want 2", n)
	}

	expected := `
# HELP livescan_streamers Known streamers by the latest query that surfaced them
# TYPE livescan_streamers gauge
livescan_streamers{query="gaming"} 4
livescan_streamers{query="music"} 1
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
}

func TestStreamerCollector_StoreError(t *testing.T) {
	c := &StreamerCollector{store: fakeCounter{err: errors.New("db down")}}
	if n := testutil.CollectAndCount(c); n != 0 {
		t.Errorf("collected %d metrics on error, want 0", n)
	}
}

func TestHandlerAndMiddleware(t *testing.T) {
	m := New(fakeCounter{counts: []models.QueryCount{{Query: "gaming", Count: 2}}})

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/ping", func(c fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", m.Handler())

	req, _ := http.NewRequest("GET", "/ping", nil)
	if _, err := app.Test(req); err != nil {
		t.Fatalf("ping request failed: %v", err)
	}

	req, _ = http.NewRequest("GET", "/metrics", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	text := string(body)

	for _, want := range []string{
		`http_requests_total{method="GET",route="/ping",status="200"} 1`,
		`livescan_streamers{query="gaming"} 2`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
