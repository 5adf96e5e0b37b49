// Package discovery finds live streamers for a query: one search, a bounded
// fan-out over recommendations for the rooms it returns, and an
// order-preserving merge of both stages.
package discovery

import (
	"context"
	"errors"
	"log/slog"

	"livescan/internal/tikapi"
)

// Searcher runs the mandatory live search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]byte, error)
}

// Client is the full upstream surface a Discoverer needs.
type Client interface {
	Searcher
	Recommender
}

// State is the lifecycle position of a discovery run.
type State string

const (
	StateAwaitingSearch State = "AWAITING_SEARCH"
	StateAggregating    State = "AGGREGATING"
	StateComplete       State = "COMPLETE"
	StateFailed         State = "FAILED"
)

// Result is the outcome of one discovery run.
type Result struct {
	Query string
	// Identities holds search identities first, then recommended ones not
	// already seen, each in first-seen order.
	Identities []string

	SearchFound      int
	RoomsFound       int
	RecommendedFound int
	Lookups          []LookupOutcome
	State            State
}

// FailedLookups counts recommendation lookups that were absorbed as failures.
func (r *Result) FailedLookups() int {
	return FanOutResult{Outcomes: r.Lookups}.Failed()
}

// Discoverer sequences search, fan-out and merge.
type Discoverer struct {
	search Searcher
	fanOut *FanOut
	log    *slog.Logger
}

// Options tunes the recommendation fan-out.
type Options struct {
	FanOutLimit int
	Concurrency int
}

// New creates a Discoverer over an upstream client. A nil logger discards.
func New(client Client, opts Options, log *slog.Logger) *Discoverer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Discoverer{
		search: client,
		fanOut: NewFanOut(client, opts.FanOutLimit, opts.Concurrency, log),
		log:    log,
	}
}

// Discover returns the unique identities live for query. Only a failed
// search call is fatal and comes back as a *SearchError; recommendation
// failures and unparsable documents shrink the result instead.
func (d *Discoverer) Discover(ctx context.Context, query string) (*Result, error) {
	log := d.log.With("query", query)
	log.Info("searching for live streams", "state", StateAwaitingSearch)

	body, err := d.search.Search(ctx, query)
	if err != nil {
		logSearchFailure(log, err)
		return nil, &SearchError{Query: query, Err: err}
	}

	res := &Result{Query: query, State: StateAggregating}

	searchIDs, err := tikapi.ExtractSearchDisplayIDs(body)
	if err != nil {
		log.Error("search response could not be parsed", "error", err)
	}
	roomIDs, err := tikapi.ExtractRoomIDs(body)
	if err != nil {
		log.Error("search room ids could not be parsed", "error", err)
	}
	res.SearchFound = len(searchIDs)
	res.RoomsFound = len(roomIDs)
	log.Info("search complete",
		"state", res.State,
		"streamers", len(searchIDs),
		"room_ids", len(roomIDs),
		"fanout_limit", d.fanOut.Limit(),
	)

	fan := d.fanOut.Collect(ctx, roomIDs)
	res.RecommendedFound = len(fan.Identities)
	res.Lookups = fan.Outcomes

	res.Identities = Deduplicate(searchIDs, fan.Identities)
	res.State = StateComplete
	log.Info("discovery complete",
		"state", res.State,
		"unique", len(res.Identities),
		"failed_lookups", fan.Failed(),
	)

	return res, nil
}

func logSearchFailure(log *slog.Logger, err error) {
	var (
		ve *tikapi.ValidationError
		re *tikapi.ResponseError
	)
	switch {
	case errors.As(err, &ve):
		log.Error("search validation error", "state", StateFailed, "field", ve.Field, "error", err)
	case errors.As(err, &re):
		log.Error("search response error", "state", StateFailed, "status", re.StatusCode, "error", err)
	default:
		log.Error("search failed", "state", StateFailed, "error", err)
	}
}
