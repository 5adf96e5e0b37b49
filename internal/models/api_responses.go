package models

// Page wraps a paginated list.
type Page[T any] struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Data   []T   `json:"data"`
}

// Statistics summarises scraping activity within a time window.
type Statistics struct {
	TotalStreamers   int64        `json:"total_streamers"`
	LiveStreamers    int64        `json:"live_streamers"`
	RecentScans      int64        `json:"recent_scans"`
	SuccessfulScans  int64        `json:"successful_scans"`
	FailedScans      int64        `json:"failed_scans"`
	StreamersByQuery []QueryCount `json:"streamers_by_query"`
	TopStreamers     []Streamer   `json:"top_streamers"`
	ScanHistory      []ScanRecord `json:"scan_history"`
}

// SearchLiveResponse is returned by a single-query live search.
type SearchLiveResponse struct {
	Query         string     `json:"query"`
	Total         int        `json:"total"`
	Streamers     []string   `json:"streamers"`
	StreamersData []Streamer `json:"streamers_data"`
	New           int        `json:"new"`
	Updated       int        `json:"updated"`
	FailedLookups int        `json:"failed_lookups"`
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status           string   `json:"status"`
	SchedulerRunning bool     `json:"scheduler_running"`
	Queries          []string `json:"queries"`
	ScrapeInterval   string   `json:"scrape_interval"`
	TikAPIConfigured bool     `json:"tikapi_configured"`
	Subscribers      int      `json:"subscribers"`
}
