package api

import (
	"context"
	"time"

	"livescan/internal/models"
)

// Store is the read side of the database used by the reporting endpoints.
type Store interface {
	ListStreamers(ctx context.Context, f models.StreamerFilter) ([]models.Streamer, int64, error)
	GetStreamerByUsername(ctx context.Context, username string) (*models.Streamer, error)
	ListQueries(ctx context.Context) ([]string, error)
	ListScans(ctx context.Context, limit, offset int) ([]models.ScanRecord, int64, error)
	GetStatistics(ctx context.Context, since time.Time) (*models.Statistics, error)
}
