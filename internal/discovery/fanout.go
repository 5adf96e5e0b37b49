package discovery

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"livescan/internal/tikapi"
)

// DefaultFanOutLimit caps how many room ids are expanded through
// recommendations per run.
const DefaultFanOutLimit = 5

// Recommender fetches the raw recommendation document for a room.
type Recommender interface {
	Recommend(ctx context.Context, roomID string) ([]byte, error)
}

// Lookup failure kinds, used as log fields and metric labels.
const (
	KindOK         = "ok"
	KindValidation = "validation"
	KindResponse   = "response"
	KindParse      = "parse"
	KindCanceled   = "canceled"
	KindTransport  = "transport"
)

// LookupOutcome records what one recommendation lookup produced.
type LookupOutcome struct {
	RoomID string
	Found  int
	Err    error
}

// Kind classifies the outcome.
func (o LookupOutcome) Kind() string {
	return errorKind(o.Err)
}

func errorKind(err error) string {
	var (
		ve *tikapi.ValidationError
		re *tikapi.ResponseError
	)
	switch {
	case err == nil:
		return KindOK
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &re):
		return KindResponse
	case errors.Is(err, tikapi.ErrParse):
		return KindParse
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindTransport
	}
}

// FanOutResult is the concatenation of every successful lookup, in input
// order, plus one outcome per attempted room.
type FanOutResult struct {
	Identities []string
	Outcomes   []LookupOutcome
}

// Failed counts lookups that contributed nothing because of an error.
func (r FanOutResult) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// FanOut expands room ids into recommended identities. Individual lookup
// failures are logged and absorbed.
type FanOut struct {
	rec         Recommender
	limit       int
	concurrency int
	log         *slog.Logger
}

// NewFanOut creates a fan-out controller. A non-positive limit uses
// DefaultFanOutLimit; a non-positive concurrency runs every lookup in the
// batch at once.
func NewFanOut(rec Recommender, limit, concurrency int, log *slog.Logger) *FanOut {
	if limit <= 0 {
		limit = DefaultFanOutLimit
	}
	if concurrency <= 0 || concurrency > limit {
		concurrency = limit
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &FanOut{rec: rec, limit: limit, concurrency: concurrency, log: log}
}

// Limit returns the configured room cap.
func (f *FanOut) Limit() int { return f.limit }

// Collect looks up at most Limit() rooms and returns their identities
// concatenated in roomIDs order. It never fails; cancelling ctx abandons
// lookups still in flight and records them as failures.
func (f *FanOut) Collect(ctx context.Context, roomIDs []string) FanOutResult {
	if len(roomIDs) > f.limit {
		roomIDs = roomIDs[:f.limit]
	}

	contributions := make([][]string, len(roomIDs))
	outcomes := make([]LookupOutcome, len(roomIDs))

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, roomID := range roomIDs {
		g.Go(func() error {
			ids, err := f.lookup(ctx, roomID)
			contributions[i] = ids
			outcomes[i] = LookupOutcome{RoomID: roomID, Found: len(ids), Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var all []string
	for i, o := range outcomes {
		if o.Err != nil {
			f.logFailure(o)
			continue
		}
		f.log.Info("recommended streamers found", "room_id", o.RoomID, "count", o.Found)
		all = append(all, contributions[i]...)
	}

	return FanOutResult{Identities: all, Outcomes: outcomes}
}

func (f *FanOut) lookup(ctx context.Context, roomID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := f.rec.Recommend(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return tikapi.ExtractRecommendedDisplayIDs(body)
}

func (f *FanOut) logFailure(o LookupOutcome) {
	attrs := []any{"room_id", o.RoomID, "kind", o.Kind(), "error", o.Err}

	var (
		ve *tikapi.ValidationError
		re *tikapi.ResponseError
	)
	switch {
	case errors.As(o.Err, &ve):
		attrs = append(attrs, "field", ve.Field)
		f.log.Error("recommendation validation error", attrs...)
	case errors.As(o.Err, &re):
		attrs = append(attrs, "status", re.StatusCode)
		f.log.Error("recommendation response error", attrs...)
	default:
		f.log.Error("recommendation lookup failed", attrs...)
	}
}
