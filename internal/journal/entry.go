package journal

import "time"

// Outcome values stored for a run.
const (
	OutcomeSuccess  = "success"
	OutcomeAborted  = "aborted"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// Entry is one journaled pipeline run.
type Entry struct {
	RunID      string
	StartedAt  time.Time
	Duration   time.Duration
	Identity   string
	Artifact   string
	Requested  []string
	Released   []string
	MirroredTo string
	Outcome    string
	Stage      string // failing stage, empty on success
	Error      string
}
