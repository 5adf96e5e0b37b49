package db

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"

	"livescan/internal/models"
)

const scanColumns = `id, timestamp, query, streamers_found, success, error_message`

func insertScan(ctx context.Context, q querier, rec *models.ScanRecord) error {
	query := `
		INSERT INTO scan_history (timestamp, query, streamers_found, success, error_message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return q.QueryRow(ctx, query,
		rec.Timestamp, rec.Query, rec.StreamersFound, rec.Success, rec.ErrorMessage,
	).Scan(&rec.ID)
}

// RecordScan persists the outcome of a successful discovery run in a single
// transaction: every identity is upserted and one successful ScanRecord is
// appended. Either everything commits or nothing does.
//
// The returned Streamers follow the order of identities.
func (d *DB) RecordScan(ctx context.Context, searchQuery string, identities []string) (*models.ScanSummary, error) {
	now := time.Now().UTC()

	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Rows are locked in username order so overlapping scans cannot deadlock.
	sorted := slices.Clone(identities)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	summary := &models.ScanSummary{}
	byName := make(map[string]models.Streamer, len(sorted))
	for _, username := range sorted {
		s, inserted, err := upsertStreamer(ctx, tx, username, searchQuery, now)
		if err != nil {
			return nil, err
		}
		if inserted {
			summary.New++
		} else {
			summary.Updated++
		}
		byName[username] = *s
	}

	summary.Streamers = make([]models.Streamer, 0, len(sorted))
	for _, username := range identities {
		if s, ok := byName[username]; ok {
			summary.Streamers = append(summary.Streamers, s)
			delete(byName, username)
		}
	}

	summary.Scan = models.ScanRecord{
		Timestamp:      now,
		Query:          searchQuery,
		StreamersFound: len(summary.Streamers),
		Success:        true,
	}
	if err := insertScan(ctx, tx, &summary.Scan); err != nil {
		return nil, fmt.Errorf("insert scan: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return summary, nil
}

// RecordFailedScan appends a failed ScanRecord carrying the error message.
// No streamer rows are touched.
func (d *DB) RecordFailedScan(ctx context.Context, searchQuery, message string) (*models.ScanRecord, error) {
	rec := &models.ScanRecord{
		Timestamp:    time.Now().UTC(),
		Query:        searchQuery,
		Success:      false,
		ErrorMessage: &message,
	}
	if err := insertScan(ctx, d.Pool, rec); err != nil {
		return nil, fmt.Errorf("insert failed scan: %w", err)
	}
	return rec, nil
}

// ListScans returns one page of scan history, newest first, and the total count.
func (d *DB) ListScans(ctx context.Context, limit, offset int) ([]models.ScanRecord, int64, error) {
	var total int64
	if err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM scan_history`).Scan(&total); err != nil {
		return nil, 0, err
	}

	scans, err := d.recentScans(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return scans, total, nil
}

func (d *DB) recentScans(ctx context.Context, limit, offset int) ([]models.ScanRecord, error) {
	query := `SELECT ` + scanColumns + ` FROM scan_history ORDER BY timestamp DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := d.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanScanRecords(rows)
}

// scanScanRecords scans multiple rows into a slice of ScanRecords.
func scanScanRecords(rows pgx.Rows) ([]models.ScanRecord, error) {
	defer rows.Close()

	scans := []models.ScanRecord{}
	for rows.Next() {
		var s models.ScanRecord
		if err := rows.Scan(
			&s.ID,
			&s.Timestamp,
			&s.Query,
			&s.StreamersFound,
			&s.Success,
			&s.ErrorMessage,
		); err != nil {
			return nil, err
		}
		scans = append(scans, s)
	}
	return scans, rows.Err()
}
