package domain

import "context"

// RenderJournal persists terminal render outcomes for later inspection.
// The service runs with a nil journal when no database is configured.
type RenderJournal interface {
	Record(ctx context.Context, rec *RenderRecord) error
	GetByID(ctx context.Context, id string) (*RenderRecord, error)
	StateCounts24h(ctx context.Context) (map[JobState]int64, error)
}
