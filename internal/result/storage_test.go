package result_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arclearn/loanbench/internal/metrics"
	"github.com/arclearn/loanbench/internal/result"
	"github.com/arclearn/loanbench/internal/reward"
	"github.com/arclearn/loanbench/internal/trajectory"
)

func TestCreateRunDir(t *testing.T) {
	base := t.TempDir()
	runDir, err := result.CreateRunDir(base)
	if err != nil {
		t.Fatalf("CreateRunDir: %v", err)
	}
	info, err := os.Stat(runDir)
	if err != nil || !info.IsDir() {
		t.Fatalf("run dir not created: %v", err)
	}

	latest := filepath.Join(base, "latest")
	target, err := os.Readlink(latest)
	if err != nil {
		t.Fatalf("latest symlink: %v", err)
	}
	if target != runDir {
		t.Errorf("latest points to %q, want %q", target, runDir)
	}
}

func TestCreateRunDirReplacesLatest(t *testing.T) {
	base := t.TempDir()
	if _, err := result.CreateRunDir(base); err != nil {
		t.Fatal(err)
	}
	second, err := result.CreateRunDir(base)
	if err != nil {
		t.Fatalf("second CreateRunDir: %v", err)
	}
	target, err := os.Readlink(filepath.Join(base, "latest"))
	if err != nil {
		t.Fatal(err)
	}
	if target != second {
		t.Errorf("latest points to %q, want newest run dir %q", target, second)
	}
}

func TestWriteReadRunRoundTrip(t *testing.T) {
	runDir := t.TempDir()
	run := &result.Run{
		ID:         "abc-123",
		Checkpoint: "checkpoint-100",
		TrainStep:  100,
		TaskSet:    "loan-failures",
		StartedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		DurationS:  42,
		Records: []reward.Record{
			{
				FinalReward:        1,
				SampleWeight:       1.9,
				AvoidedFailure:     0.95,
				ImprovementQuality: 0.8,
				BusinessImpactCost: 25000,
				ResponseLength:     412,
				MCPServerCalls:     3,
				FailureType:        trajectory.DiscriminatoryLanguage,
			},
		},
		Skipped: result.Skipped{Invalid: 1, TimedOut: 2},
	}
	run.Summary = metrics.Summarize(run.Records)

	if err := result.WriteRun(runDir, run); err != nil {
		t.Fatalf("WriteRun: %v", err)
	}

	path := filepath.Join(runDir, "run-abc-123.json")
	got, err := result.ReadRun(path)
	if err != nil {
		t.Fatalf("ReadRun: %v", err)
	}
	if got.ID != run.ID || got.Checkpoint != run.Checkpoint || got.TrainStep != 100 {
		t.Errorf("identity fields: got %+v", got)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("started_at: got %v", got.StartedAt)
	}
	if len(got.Records) != 1 || got.Records[0].FailureType != trajectory.DiscriminatoryLanguage {
		t.Errorf("records: got %+v", got.Records)
	}
	if got.Skipped != run.Skipped {
		t.Errorf("skipped: got %+v, want %+v", got.Skipped, run.Skipped)
	}
	if got.Summary.Overall.Count != 1 {
		t.Errorf("summary: got %+v", got.Summary.Overall)
	}
}

func TestReadRunMissing(t *testing.T) {
	if _, err := result.ReadRun(filepath.Join(t.TempDir(), "run-x.json")); err == nil {
		t.Error("expected error for missing run file")
	}
}

func TestSkippedTotal(t *testing.T) {
	s := result.Skipped{Invalid: 1, TimedOut: 2, Failed: 3}
	if s.Total() != 6 {
		t.Errorf("Total: got %d, want 6", s.Total())
	}
}
