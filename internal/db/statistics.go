package db

import (
	"context"
	"time"

	"livescan/internal/models"
)

const (
	statsTopStreamers = 10
	statsScanHistory  = 20
)

// GetStatistics aggregates streamer totals and the scans recorded since the
// given time.
func (d *DB) GetStatistics(ctx context.Context, since time.Time) (*models.Statistics, error) {
	var stats models.Statistics

	err := d.Pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_live) FROM streamers
	`).Scan(&stats.TotalStreamers, &stats.LiveStreamers)
	if err != nil {
		return nil, err
	}

	err = d.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE success),
		       COUNT(*) FILTER (WHERE NOT success)
		FROM scan_history
		WHERE timestamp >= $1
	`, since).Scan(&stats.RecentScans, &stats.SuccessfulScans, &stats.FailedScans)
	if err != nil {
		return nil, err
	}

	if stats.StreamersByQuery, err = d.CountStreamersByQuery(ctx); err != nil {
		return nil, err
	}
	if stats.TopStreamers, err = d.TopStreamers(ctx, statsTopStreamers); err != nil {
		return nil, err
	}
	rows, err := d.Pool.Query(ctx, `SELECT `+scanColumns+` FROM scan_history
		WHERE timestamp >= $1
		ORDER BY timestamp DESC, id DESC
		LIMIT $2`, since, statsScanHistory)
	if err != nil {
		return nil, err
	}
	if stats.ScanHistory, err = scanScanRecords(rows); err != nil {
		return nil, err
	}

	return &stats, nil
}
