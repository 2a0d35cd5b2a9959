package result

import (
	"time"

	"github.com/arclearn/loanbench/internal/metrics"
	"github.com/arclearn/loanbench/internal/reward"
)

// Run is one finalized evaluation run: every reward record produced for one
// checkpoint over one task set, plus the derived summary. Immutable once
// written.
type Run struct {
	ID         string          `json:"id"`
	Checkpoint string          `json:"checkpoint"`
	TrainStep  int             `json:"train_step,omitempty"`
	TaskSet    string          `json:"task_set"`
	StartedAt  time.Time       `json:"started_at"`
	DurationS  int             `json:"duration_s"`
	Records    []reward.Record `json:"records"`
	Summary    metrics.Summary `json:"summary"`
	Skipped    Skipped         `json:"skipped"`
}

// Skipped counts examples excluded from the aggregate, by reason. Validation
// and timeout exclusions are reported rather than silently dropped.
type Skipped struct {
	Invalid  int `json:"invalid"`
	TimedOut int `json:"timed_out"`
	Failed   int `json:"failed"`
}

func (s Skipped) Total() int {
	return s.Invalid + s.TimedOut + s.Failed
}
