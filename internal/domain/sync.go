package domain

import "time"

// SyncSourceComposio is the sync-state key for the Composio ingestion job.
const SyncSourceComposio = "composio"

// SyncState tracks the schedule for a single ingestion source. One row
// per source key; updated at each sync completion.
type SyncState struct {
	SourceKey  string
	LastSyncAt *time.Time
	NextSyncAt time.Time
	UpdatedAt  time.Time
}

// SyncResult summarizes one completed sync run.
type SyncResult struct {
	Notion     int
	GitHub     int
	Slack      int
	LastSyncAt time.Time
	NextSyncAt time.Time
}

// Total returns the number of knowledge items added across all sources.
func (r SyncResult) Total() int {
	return r.Notion + r.GitHub + r.Slack
}
