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

// ReportStatus represents the status of the report store.
type ReportStatus struct {
	Backend            string           `json:"backend"`
	Connected          bool             `json:"connected"`
	TotalSnapshots     int              `json:"total_snapshots"`
	TotalConversations int              `json:"total_conversations"`
	LastSnapshotTime   time.Time        `json:"last_snapshot_time"`
	OldestSnapshotTime time.Time        `json:"oldest_snapshot_time"`
	TableSizes         map[string]int64 `json:"table_sizes"`
}
