package report_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arclearn/loanbench/internal/metrics"
	"github.com/arclearn/loanbench/internal/report"
	"github.com/arclearn/loanbench/internal/result"
	"github.com/arclearn/loanbench/internal/reward"
	"github.com/arclearn/loanbench/internal/trajectory"
)

func writeRun(t *testing.T, dir, id, checkpoint string, rewards ...float64) {
	t.Helper()
	var records []reward.Record
	for _, fr := range rewards {
		records = append(records, reward.Record{
			FinalReward:        fr,
			AvoidedFailure:     fr,
			ImprovementQuality: fr,
			SampleWeight:       1.5,
			FailureType:        trajectory.InaccurateRates,
		})
	}
	run := &result.Run{
		ID:         id,
		Checkpoint: checkpoint,
		TaskSet:    "loan-failures",
		StartedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Records:    records,
		Summary:    metrics.Summarize(records),
	}
	if err := result.WriteRun(dir, run); err != nil {
		t.Fatal(err)
	}
}

func populate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeRun(t, filepath.Join(dir, "a"), "r1", "checkpoint-100", 1, 0)
	writeRun(t, filepath.Join(dir, "a"), "r2", "checkpoint-100", 1, 1)
	writeRun(t, filepath.Join(dir, "b"), "r3", "checkpoint-200", 1, 1)
	return dir
}

func TestGenerateTable(t *testing.T) {
	var buf bytes.Buffer
	if err := report.Generate(populate(t), "table", &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"CHECKPOINT", "checkpoint-100", "checkpoint-200"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := report.Generate(populate(t), "markdown", &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "| Checkpoint |") {
		t.Errorf("missing markdown header:\n%s", out)
	}
	if !strings.Contains(out, "| checkpoint-100 | 2 | 4 |") {
		t.Errorf("missing aggregated checkpoint row:\n%s", out)
	}
}

func TestGenerateJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := report.Generate(populate(t), "json", &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var summaries []report.CheckpointSummary
	if err := json.Unmarshal(buf.Bytes(), &summaries); err != nil {
		t.Fatalf("parsing JSON output: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	// Sorted by checkpoint name.
	if summaries[0].Checkpoint != "checkpoint-100" || summaries[1].Checkpoint != "checkpoint-200" {
		t.Errorf("ordering: got %q, %q", summaries[0].Checkpoint, summaries[1].Checkpoint)
	}
	first := summaries[0]
	if first.Runs != 2 || first.Examples != 4 {
		t.Errorf("checkpoint-100 rollup: got %+v", first)
	}
	// 3 of 4 examples rewarded across the two runs.
	if diff := first.MeanReward - 0.75; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("checkpoint-100 mean reward: got %v, want 0.75", first.MeanReward)
	}
	if summaries[1].MeanReward != 1.0 {
		t.Errorf("checkpoint-200 mean reward: got %v", summaries[1].MeanReward)
	}
}

func TestGenerateMissingDir(t *testing.T) {
	var buf bytes.Buffer
	if err := report.Generate(filepath.Join(t.TempDir(), "absent"), "table", &buf); err == nil {
		t.Error("expected error for missing run directory")
	}
}
