package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// FetchLogStatus represents the status of the fetch-log store.
type FetchLogStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalFetches  int              `json:"total_fetches"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// FetchRunRecord represents a row from the marshal_fetch_runs table.
type FetchRunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	Succeeded     int32
	Failed        int32
	ConfigParams  *string
}

// SourceFetchRecord represents a row from the marshal_source_fetches table.
type SourceFetchRecord struct {
	RunID      int64
	SourceName string
	FetchTime  time.Time
	OK         bool
	Rows       int32
	Detections int32
	Error      *string
}
