package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"livescan/internal/models"
)

var streamersByQueryDesc = prometheus.NewDesc(
	"livescan_streamers",
	"Known streamers by the latest query that surfaced them",
	[]string{"query"},
	nil,
)

// QueryCounter reports stored streamer counts per query.
type QueryCounter interface {
	CountStreamersByQuery(ctx context.Context) ([]models.QueryCount, error)
}

// StreamerCollector is a custom Prometheus collector that reads streamer
// counts from the database on each scrape.
type StreamerCollector struct {
	store QueryCounter
}

// Describe sends the metric descriptor to the channel.
func (c *StreamerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- streamersByQueryDesc
}

// Collect queries the database for per-query counts and emits them as gauges.
func (c *StreamerCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := c.store.CountStreamersByQuery(ctx)
	if err != nil {
		slog.Error("failed to collect streamer metrics", "error", err)
		return
	}
	for _, qc := range counts {
		ch <- prometheus.MustNewConstMetric(
			streamersByQueryDesc,
			prometheus.GaugeValue,
			float64(qc.Count),
			qc.Query,
		)
	}
}

// Metrics holds the service's Prometheus instruments on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	scansTotal      *prometheus.CounterVec
	scanDuration    prometheus.Histogram
	discoveredTotal prometheus.Counter
	newTotal        prometheus.Counter
	lookupsTotal    *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates and registers the service metrics. store may be nil, in which
// case the per-query streamer gauge is not exported.
func New(store QueryCounter) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		scansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "livescan_scans_total",
			Help: "Discovery runs by outcome",
		}, []string{"outcome"}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "livescan_scan_duration_seconds",
			Help:    "Wall time of a discovery run including persistence",
			Buckets: prometheus.DefBuckets,
		}),
		discoveredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livescan_streamers_discovered_total",
			Help: "Unique identities returned by successful runs",
		}),
		newTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livescan_streamers_new_total",
			Help: "Identities stored for the first time",
		}),
		lookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "livescan_recommend_lookups_total",
			Help: "Recommendation lookups by outcome kind",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		m.scansTotal,
		m.scanDuration,
		m.discoveredTotal,
		m.newTotal,
		m.lookupsTotal,
		m.httpRequests,
		m.httpDuration,
	)
	if store != nil {
		registry.MustRegister(&StreamerCollector{store: store})
	}

	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveScan records one finished discovery run.
func (m *Metrics) ObserveScan(success bool, found, created int, elapsed time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failed"
	}
	m.scansTotal.WithLabelValues(outcome).Inc()
	m.scanDuration.Observe(elapsed.Seconds())
	m.discoveredTotal.Add(float64(found))
	m.newTotal.Add(float64(created))
}

// ObserveLookup counts one recommendation lookup by outcome kind.
func (m *Metrics) ObserveLookup(kind string) {
	m.lookupsTotal.WithLabelValues(kind).Inc()
}

// Middleware records request counts and latencies. Labels use the matched
// route template to keep cardinality low.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		labels := prometheus.Labels{
			"method": c.Method(),
			"route":  route,
			"status": strconv.Itoa(c.Response().StatusCode()),
		}
		m.httpRequests.With(labels).Inc()
		m.httpDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() fiber.Handler {
	var h http.Handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return adaptor.HTTPHandler(h)
}
