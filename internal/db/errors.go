package db

import "errors"

var (
	// Streamer errors
	ErrStreamerNotFound = errors.New("streamer not found")
)
