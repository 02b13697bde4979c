package domain

import "time"

// JobState enumerates render job lifecycle states. Pending is the only
// live state; everything else is terminal and a job never leaves a
// terminal state.
type JobState string

const (
	JobStatePending    JobState = "pending"
	JobStateCompleted  JobState = "completed"
	JobStateFailed     JobState = "failed"
	JobStateCancelled  JobState = "cancelled"
	JobStateSuperseded JobState = "superseded"
)

// Terminal reports whether the state admits no further transitions.
func (s JobState) Terminal() bool {
	return s != JobStatePending
}

// RenderRecord is the journal row written for a render job that reached
// a terminal state and was delivered to its caller.
type RenderRecord struct {
	ID           string
	Key          string
	Generation   uint64
	State        JobState
	ErrorMessage string
	ByteSize     int
	Duration     time.Duration
	CreatedAt    time.Time
}
