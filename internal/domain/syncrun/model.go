package syncrun

import "time"

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// RunLog records one pipeline invocation. Rows are append-only: created when
// the run starts and finalized exactly once when it ends.
type RunLog struct {
	ID            string
	CompetitionID string // empty = all competitions
	StartedAt     time.Time
	FinishedAt    *time.Time
	Status        Status
	Processed     int
	Created       int
	Updated       int
	Errors        int
	APICalls      int
}
