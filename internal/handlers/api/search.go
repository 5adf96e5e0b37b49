package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"livescan/internal/config"
	"livescan/internal/discovery"
	"livescan/internal/middleware"
	"livescan/internal/models"
	"livescan/internal/scraper"
	"livescan/internal/tikapi"
	"livescan/internal/validation"
)

// Scanner runs discovery with persistence.
type Scanner interface {
	Configured() bool
	ScanQuery(ctx context.Context, query string) (*scraper.ScanOutcome, error)
	ScrapeQueries(ctx context.Context, queries []string) scraper.BatchResult
}

// SearchHandler triggers live searches.
type SearchHandler struct {
	scanner Scanner
	cfg     *config.Config
}

// NewSearchHandler creates a new API search handler.
func NewSearchHandler(scanner Scanner, cfg *config.Config) *SearchHandler {
	return &SearchHandler{scanner: scanner, cfg: cfg}
}

// SearchLive discovers, stores and returns the streamers live for ?query=.
func (h *SearchHandler) SearchLive(c fiber.Ctx) error {
	if !h.scanner.Configured() {
		return jsonError(c, fiber.StatusServiceUnavailable, scraper.ErrNotConfigured.Error())
	}

	query := validation.NormalizeQuery(c.Query("query"))
	if valid, msg := validation.ValidateQuery(query); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	out, err := h.scanner.ScanQuery(c.Context(), query)
	if err != nil {
		middleware.Logger(c).Warn("live search failed", "query", query, "error", err)
		return jsonError(c, searchErrorStatus(err), discovery.UserMessage(err))
	}

	return jsonSuccess(c, models.SearchLiveResponse{
		Query:         out.Query,
		Total:         len(out.Identities),
		Streamers:     out.Identities,
		StreamersData: out.Streamers,
		New:           out.New,
		Updated:       out.Updated,
		FailedLookups: out.FailedLookups,
	})
}

// Scrape runs a batch over the queries in the body, or the configured
// defaults when the body names none.
func (h *SearchHandler) Scrape(c fiber.Ctx) error {
	if !h.scanner.Configured() {
		return jsonError(c, fiber.StatusServiceUnavailable, scraper.ErrNotConfigured.Error())
	}

	var body struct {
		Queries []string `json:"queries"`
	}
	if raw := c.Body(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	queries := h.cfg.SearchQueries
	if len(body.Queries) > 0 {
		queries = make([]string, 0, len(body.Queries))
		for _, q := range body.Queries {
			q = validation.NormalizeQuery(q)
			if valid, msg := validation.ValidateQuery(q); !valid {
				return jsonError(c, fiber.StatusBadRequest, msg)
			}
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "no queries to scrape")
	}

	res := h.scanner.ScrapeQueries(c.Context(), queries)
	middleware.Logger(c).Info("manual scrape finished", "queries", len(queries), "errors", len(res.Errors))
	return jsonSuccess(c, res)
}

// searchErrorStatus maps a failed run to an HTTP status.
func searchErrorStatus(err error) int {
	var se *discovery.SearchError
	if !errors.As(err, &se) {
		return fiber.StatusInternalServerError
	}

	var ve *tikapi.ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest
	}
	var re *tikapi.ResponseError
	if errors.As(err, &re) && re.StatusCode == http.StatusTooManyRequests {
		return fiber.StatusTooManyRequests
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusBadGateway
}
