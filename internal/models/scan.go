package models

import "time"

// ScanRecord is the immutable history entry written once per discovery run.
type ScanRecord struct {
	ID             int64     `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Query          string    `json:"query"`
	StreamersFound int       `json:"streamers_found"`
	Success        bool      `json:"success"`
	ErrorMessage   *string   `json:"error_message"`
}

// ScanSummary reports what a successful scan persisted.
type ScanSummary struct {
	Scan      ScanRecord `json:"scan"`
	Streamers []Streamer `json:"streamers"`
	New       int        `json:"new"`
	Updated   int        `json:"updated"`
}
