package models

import "time"

// Streamer is one live producer ever observed, keyed by Username.
type Streamer struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Query     string    `json:"query"`   // Latest query that surfaced this streamer
	Viewers   int       `json:"viewers"` // Placeholder; the live endpoints return no viewer count
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	TimesSeen int       `json:"times_seen"`
	IsLive    bool      `json:"is_live"`
}

// StreamerFilter selects a page of streamers ordered by last_seen descending.
type StreamerFilter struct {
	Query  *string
	IsLive *bool
	Limit  int
	Offset int
}

// QueryCount is the number of streamers attributed to a query.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}
