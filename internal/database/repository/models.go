package repository

import "time"

// Snapshot is one cached retrieval of the committee list.
type Snapshot struct {
	ID          string
	Day         string // YYYYMMDD
	Source      string
	EntityCount int
	ContentHash string
	CreatedAt   time.Time
}

// Run records one published analysis.
type Run struct {
	ID             string
	SnapshotID     *string
	Source         string
	EntityCount    int
	FragmentCount  int
	CommitteeCount int
	OutputDir      string
	CreatedAt      time.Time
}
