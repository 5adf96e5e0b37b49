package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"livescan/internal/models"
)

// streamerColumns is the standard column list for streamer queries.
const streamerColumns = `id, username, query, viewers, first_seen, last_seen, times_seen, is_live`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanStreamer scans a row into a Streamer struct.
func scanStreamer(row pgx.Row) (*models.Streamer, error) {
	var s models.Streamer
	err := row.Scan(
		&s.ID,
		&s.Username,
		&s.Query,
		&s.Viewers,
		&s.FirstSeen,
		&s.LastSeen,
		&s.TimesSeen,
		&s.IsLive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStreamerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// scanStreamers scans multiple rows into a slice of Streamers.
func scanStreamers(rows pgx.Rows) ([]models.Streamer, error) {
	defer rows.Close()

	streamers := []models.Streamer{}
	for rows.Next() {
		var s models.Streamer
		if err := rows.Scan(
			&s.ID,
			&s.Username,
			&s.Query,
			&s.Viewers,
			&s.FirstSeen,
			&s.LastSeen,
			&s.TimesSeen,
			&s.IsLive,
		); err != nil {
			return nil, err
		}
		streamers = append(streamers, s)
	}

	return streamers, rows.Err()
}

// upsertStreamer inserts a first sighting or refreshes an existing streamer:
// last_seen moves to now, times_seen grows by one, the live flag is set and
// the latest query replaces the previous one. The bool is true for inserts.
func upsertStreamer(ctx context.Context, q querier, username, searchQuery string, now time.Time) (*models.Streamer, bool, error) {
	query := `
		INSERT INTO streamers (username, query, viewers, first_seen, last_seen, times_seen, is_live)
		VALUES ($1, $2, 0, $3, $3, 1, TRUE)
		ON CONFLICT (username) DO UPDATE SET
			last_seen = EXCLUDED.last_seen,
			times_seen = streamers.times_seen + 1,
			is_live = TRUE,
			query = EXCLUDED.query
		RETURNING ` + streamerColumns + `, (xmax = 0) AS inserted
	`

	var (
		s        models.Streamer
		inserted bool
	)
	err := q.QueryRow(ctx, query, username, searchQuery, now).Scan(
		&s.ID,
		&s.Username,
		&s.Query,
		&s.Viewers,
		&s.FirstSeen,
		&s.LastSeen,
		&s.TimesSeen,
		&s.IsLive,
		&inserted,
	)
	if err != nil {
		return nil, false, fmt.Errorf("upsert streamer %q: %w", username, err)
	}
	return &s, inserted, nil
}

// GetStreamerByUsername retrieves a streamer by its exact username.
func (d *DB) GetStreamerByUsername(ctx context.Context, username string) (*models.Streamer, error) {
	query := `SELECT ` + streamerColumns + ` FROM streamers WHERE username = $1`
	return scanStreamer(d.Pool.QueryRow(ctx, query, username))
}

// ListStreamers returns one page of streamers, most recently seen first, and
// the total number matching the filter.
func (d *DB) ListStreamers(ctx context.Context, f models.StreamerFilter) ([]models.Streamer, int64, error) {
	var (
		conds []string
		args  []any
	)
	if f.Query != nil {
		args = append(args, *f.Query)
		conds = append(conds, fmt.Sprintf("query = $%d", len(args)))
	}
	if f.IsLive != nil {
		args = append(args, *f.IsLive)
		conds = append(conds, fmt.Sprintf("is_live = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM streamers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	query := `SELECT ` + streamerColumns + ` FROM streamers` + where +
		fmt.Sprintf(` ORDER BY last_seen DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	streamers, err := scanStreamers(rows)
	if err != nil {
		return nil, 0, err
	}
	return streamers, total, nil
}

// ListQueries returns every distinct query streamers are attributed to.
func (d *DB) ListQueries(ctx context.Context) ([]string, error) {
	rows, err := d.Pool.Query(ctx, `SELECT DISTINCT query FROM streamers ORDER BY query`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	queries := []string{}
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// CountStreamersByQuery groups streamer counts by their latest query.
func (d *DB) CountStreamersByQuery(ctx context.Context) ([]models.QueryCount, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT query, COUNT(*) FROM streamers
		GROUP BY query ORDER BY COUNT(*) DESC, query
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []models.QueryCount{}
	for rows.Next() {
		var c models.QueryCount
		if err := rows.Scan(&c.Query, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// TopStreamers returns the streamers seen most often.
func (d *DB) TopStreamers(ctx context.Context, limit int) ([]models.Streamer, error) {
	query := `SELECT ` + streamerColumns + ` FROM streamers ORDER BY times_seen DESC, last_seen DESC LIMIT $1`
	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanStreamers(rows)
}
