package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/arclearn/loanbench/internal/result"
)

// CheckpointSummary aggregates every stored run for one checkpoint.
type CheckpointSummary struct {
	Checkpoint  string  `json:"checkpoint"`
	Runs        int     `json:"runs"`
	Examples    int     `json:"examples"`
	Skipped     int     `json:"skipped"`
	MeanReward  float64 `json:"mean_reward"`
	MeanAvoided float64 `json:"mean_avoided"`
	MeanQuality float64 `json:"mean_quality"`
}

// Generate reads stored evaluation runs under runDir and renders a
// per-checkpoint summary.
func Generate(runDir, format string, w io.Writer) error {
	runs, err := collectRuns(runDir)
	if err != nil {
		return err
	}

	summaries := aggregate(runs)

	switch format {
	case "markdown":
		return writeMarkdown(summaries, w)
	case "json":
		return writeJSON(summaries, w)
	default:
		return writeTable(summaries, w)
	}
}

func collectRuns(runDir string) ([]*result.Run, error) {
	var runs []*result.Run
	err := filepath.Walk(runDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasPrefix(info.Name(), "run-") || !strings.HasSuffix(info.Name(), ".json") {
			return nil
		}
		run, err := result.ReadRun(path)
		if err != nil {
			return nil
		}
		runs = append(runs, run)
		return nil
	})
	return runs, err
}

func aggregate(runs []*result.Run) []CheckpointSummary {
	type accum struct {
		runs     int
		examples int
		skipped  int
		reward   float64
		avoided  float64
		quality  float64
	}
	byCheckpoint := map[string]*accum{}

	for _, r := range runs {
		a, ok := byCheckpoint[r.Checkpoint]
		if !ok {
			a = &accum{}
			byCheckpoint[r.Checkpoint] = a
		}
		n := r.Summary.Overall.Count
		a.runs++
		a.examples += n
		a.skipped += r.Skipped.Total()
		// Weight run means by example count so the rollup equals the mean
		// over all examples.
		a.reward += r.Summary.Overall.MeanReward * float64(n)
		a.avoided += r.Summary.Overall.MeanAvoided * float64(n)
		a.quality += r.Summary.Overall.MeanQuality * float64(n)
	}

	var summaries []CheckpointSummary
	for name, a := range byCheckpoint {
		s := CheckpointSummary{
			Checkpoint: name,
			Runs:       a.runs,
			Examples:   a.examples,
			Skipped:    a.skipped,
		}
		if a.examples > 0 {
			s.MeanReward = a.reward / float64(a.examples)
			s.MeanAvoided = a.avoided / float64(a.examples)
			s.MeanQuality = a.quality / float64(a.examples)
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Checkpoint < summaries[j].Checkpoint
	})
	return summaries
}

func writeTable(summaries []CheckpointSummary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECKPOINT\tRUNS\tEXAMPLES\tSKIPPED\tMEAN REWARD\tMEAN AVOIDED\tMEAN QUALITY")
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.3f\t%.3f\t%.3f\n",
			s.Checkpoint, s.Runs, s.Examples, s.Skipped, s.MeanReward, s.MeanAvoided, s.MeanQuality)
	}
	return tw.Flush()
}

func writeMarkdown(summaries []CheckpointSummary, w io.Writer) error {
	fmt.Fprintln(w, "| Checkpoint | Runs | Examples | Skipped | Mean Reward | Mean Avoided | Mean Quality |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|")
	for _, s := range summaries {
		fmt.Fprintf(w, "| %s | %d | %d | %d | %.3f | %.3f | %.3f |\n",
			s.Checkpoint, s.Runs, s.Examples, s.Skipped, s.MeanReward, s.MeanAvoided, s.MeanQuality)
	}
	return nil
}

func writeJSON(summaries []CheckpointSummary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
