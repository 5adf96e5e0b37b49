package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livescan/internal/config"
	"livescan/internal/db"
	"livescan/internal/discovery"
	"livescan/internal/models"
	"livescan/internal/scraper"
	"livescan/internal/tikapi"
)

type fakeStore struct {
	streamers  []models.Streamer
	scans      []models.ScanRecord
	lastFilter models.StreamerFilter
	lastSince  time.Time
	err        error
}

func (f *fakeStore) ListStreamers(ctx context.Context, filter models.StreamerFilter) ([]models.Streamer, int64, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.streamers, int64(len(f.streamers)), nil
}

func (f *fakeStore) GetStreamerByUsername(ctx context.Context, username string) (*models.Streamer, error) {
	for _, s := range f.streamers {
		if s.Username == username {
			return &s, nil
		}
	}
	return nil, db.ErrStreamerNotFound
}

func (f *fakeStore) ListQueries(ctx context.Context) ([]string, error) {
	return []string{"gaming", "music"}, f.err
}

func (f *fakeStore) ListScans(ctx context.Context, limit, offset int) ([]models.ScanRecord, int64, error) {
	return f.scans, int64(len(f.scans)), f.err
}

func (f *fakeStore) GetStatistics(ctx context.Context, since time.Time) (*models.Statistics, error) {
	f.lastSince = since
	return &models.Statistics{TotalStreamers: int64(len(f.streamers))}, f.err
}

type fakeScanner struct {
	configured bool
	outcome    *scraper.ScanOutcome
	err        error
	batch      []string
}

func (f *fakeScanner) Configured() bool { return f.configured }

func (f *fakeScanner) ScanQuery(ctx context.Context, query string) (*scraper.ScanOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := *f.outcome
	out.Query = query
	return &out, nil
}

func (f *fakeScanner) ScrapeQueries(ctx context.Context, queries []string) scraper.BatchResult {
	f.batch = queries
	return scraper.BatchResult{QueriesProcessed: len(queries), Errors: []string{}}
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, target, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	return resp.StatusCode, env
}

func newApp(store Store, scanner Scanner, cfg *config.Config) *fiber.App {
	app := fiber.New()
	sh := NewStreamerHandler(store)
	rh := NewReportHandler(store)
	rh.now = func() time.Time { return time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC) }
	search := NewSearchHandler(scanner, cfg)

	app.Get("/api/streamers", sh.List)
	app.Get("/api/streamers/:username", sh.Get)
	app.Get("/api/queries", sh.Queries)
	app.Get("/api/statistics", rh.Statistics)
	app.Get("/api/scan-history", rh.ScanHistory)
	app.Post("/api/search-live", search.SearchLive)
	app.Post("/api/scrape", search.Scrape)
	return app
}

func TestStreamersList(t *testing.T) {
	store := &fakeStore{streamers: []models.Streamer{{Username: "alice"}, {Username: "bob"}}}
	app := newApp(store, &fakeScanner{}, &config.Config{})

	code, env := do(t, app, "GET", "/api/streamers?query=%20gaming%20&is_live=true&limit=10&offset=5", "")
	require.Equal(t, 200, code)
	assert.Equal(t, "ok", env.Status)

	var page models.Page[models.Streamer]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 5, page.Offset)
	assert.Len(t, page.Data, 2)

	require.NotNil(t, store.lastFilter.Query)
	assert.Equal(t, "gaming", *store.lastFilter.Query)
	require.NotNil(t, store.lastFilter.IsLive)
	assert.True(t, *store.lastFilter.IsLive)
}

func TestStreamersList_Defaults(t *testing.T) {
	store := &fakeStore{}
	app := newApp(store, &fakeScanner{}, &config.Config{})

	code, env := do(t, app, "GET", "/api/streamers", "")
	require.Equal(t, 200, code)
	assert.JSONEq(t, `{"total":0,"limit":100,"offset":0,"data":[]}`, string(env.Data))
	assert.Equal(t, 100, store.lastFilter.Limit)
	assert.Nil(t, store.lastFilter.Query)
	assert.Nil(t, store.lastFilter.IsLive)
}

func TestStreamersList_BadParams(t *testing.T) {
	app := newApp(&fakeStore{}, &fakeScanner{}, &config.Config{})

	for _, target := range []string{
		"/api/streamers?limit=0",
		"/api/streamers?limit=501",
		"/api/streamers?offset=-3",
		"/api/streamers?is_live=perhaps",
	} {
		code, env := do(t, app, "GET", target, "")
		assert.Equal(t, 400, code, target)
		assert.Equal(t, "error", env.Status, target)
	}
}

func TestStreamersGet(t *testing.T) {
	app := newApp(&fakeStore{streamers: []models.Streamer{{Username: "alice", TimesSeen: 3}}}, &fakeScanner{}, &config.Config{})

	code, env := do(t, app, "GET", "/api/streamers/alice", "")
	require.Equal(t, 200, code)
	var s models.Streamer
	require.NoError(t, json.Unmarshal(env.Data, &s))
	assert.Equal(t, 3, s.TimesSeen)

	code, env = do(t, app, "GET", "/api/streamers/nobody", "")
	assert.Equal(t, 404, code)
	assert.Equal(t, "streamer not found", env.Error)
}

func TestStatistics_Window(t *testing.T) {
	store := &fakeStore{}
	app := newApp(store, &fakeScanner{}, &config.Config{})

	code, _ := do(t, app, "GET", "/api/statistics?hours=6", "")
	require.Equal(t, 200, code)
	assert.Equal(t, time.Date(2026, 1, 2, 6, 0, 0, 0, time.UTC), store.lastSince)

	code, _ = do(t, app, "GET", "/api/statistics?hours=0", "")
	assert.Equal(t, 400, code)
}

func TestScanHistory_LimitBounds(t *testing.T) {
	app := newApp(&fakeStore{}, &fakeScanner{}, &config.Config{})

	code, _ := do(t, app, "GET", "/api/scan-history?limit=200", "")
	assert.Equal(t, 200, code)
	code, _ = do(t, app, "GET", "/api/scan-history?limit=201", "")
	assert.Equal(t, 400, code)
}

func TestStoreFailureIs500(t *testing.T) {
	app := newApp(&fakeStore{err: errors.New("db down")}, &fakeScanner{}, &config.Config{})

	code, env := do(t, app, "GET", "/api/queries", "")
	assert.Equal(t, 500, code)
	assert.Equal(t, "failed to fetch queries", env.Error)
}

func TestSearchLive(t *testing.T) {
	scanner := &fakeScanner{
		configured: true,
		outcome: &scraper.ScanOutcome{
			Identities: []string{"alice", "bob"},
			Streamers:  []models.Streamer{{Username: "alice"}, {Username: "bob"}},
			New:        1,
			Updated:    1,
		},
	}
	app := newApp(&fakeStore{}, scanner, &config.Config{})

	code, env := do(t, app, "POST", "/api/search-live?query=gaming", "")
	require.Equal(t, 200, code)

	var resp models.SearchLiveResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "gaming", resp.Query)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []string{"alice", "bob"}, resp.Streamers)
	assert.Len(t, resp.StreamersData, 2)
}

func TestSearchLive_Errors(t *testing.T) {
	tests := []struct {
		name     string
		scanner  *fakeScanner
		target   string
		wantCode int
		wantErr  string
	}{
		{
			name:     "not configured",
			scanner:  &fakeScanner{},
			target:   "/api/search-live?query=gaming",
			wantCode: 503,
			wantErr:  "TikAPI credentials not configured",
		},
		{
			name:     "missing query",
			scanner:  &fakeScanner{configured: true},
			target:   "/api/search-live",
			wantCode: 400,
			wantErr:  "query is required",
		},
		{
			name: "rate limited",
			scanner: &fakeScanner{configured: true, err: &discovery.SearchError{
				Query: "gaming",
				Err:   &tikapi.ResponseError{StatusCode: 429},
			}},
			target:   "/api/search-live?query=gaming",
			wantCode: 429,
			wantErr:  "Rate limit reached. Please wait a few minutes before searching again.",
		},
		{
			name: "bad credentials",
			scanner: &fakeScanner{configured: true, err: &discovery.SearchError{
				Query: "gaming",
				Err:   &tikapi.ResponseError{StatusCode: 401},
			}},
			target:   "/api/search-live?query=gaming",
			wantCode: 502,
			wantErr:  "Invalid TikAPI credentials. Check your API key and account key.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(&fakeStore{}, tt.scanner, &config.Config{})
			code, env := do(t, app, "POST", tt.target, "")
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tt.wantErr, env.Error)
		})
	}
}

func TestScrape(t *testing.T) {
	scanner := &fakeScanner{configured: true}
	app := newApp(&fakeStore{}, scanner, &config.Config{SearchQueries: []string{"gaming", "music"}})

	code, env := do(t, app, "POST", "/api/scrape", "")
	require.Equal(t, 200, code)
	assert.Equal(t, []string{"gaming", "music"}, scanner.batch)

	var res scraper.BatchResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 2, res.QueriesProcessed)

	code, _ = do(t, app, "POST", "/api/scrape", `{"queries":[" chess "]}`)
	require.Equal(t, 200, code)
	assert.Equal(t, []string{"chess"}, scanner.batch)

	code, env = do(t, app, "POST", "/api/scrape", `{"queries":["  "]}`)
	assert.Equal(t, 400, code)
	assert.Equal(t, "query is required", env.Error)

	code, _ = do(t, app, "POST", "/api/scrape", `{not json`)
	assert.Equal(t, 400, code)
}

func TestHealth(t *testing.T) {
	cfg := &config.Config{
		SearchQueries:    []string{"gaming"},
		ScrapeInterval:   5 * time.Minute,
		TikAPIKey:        "k",
		TikAPIAccountKey: "a",
	}
	h := NewStatusHandler(cfg, func() bool { return true }, func() int { return 3 })
	app := fiber.New()
	app.Get("/health", h.Health)

	req, _ := http.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var body models.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.True(t, body.SchedulerRunning)
	assert.True(t, body.TikAPIConfigured)
	assert.Equal(t, "5m0s", body.ScrapeInterval)
	assert.Equal(t, 3, body.Subscribers)
}
