package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arclearn/loanbench/internal/config"
	"github.com/arclearn/loanbench/internal/evaldriver"
	"github.com/arclearn/loanbench/internal/report"
	"github.com/arclearn/loanbench/internal/result"
	"github.com/arclearn/loanbench/internal/reward"
	"github.com/arclearn/loanbench/internal/sink"
	"github.com/arclearn/loanbench/internal/trajectory"
)

var (
	flagCheckpoint    string
	flagCheckpointDir string
	flagAll           bool
	flagWorkers       int
)

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark one checkpoint or a checkpoint directory against the evaluation task set",
		RunE:  runBench,
	}
	cmd.Flags().StringVar(&flagCheckpoint, "checkpoint", "", "path to a single checkpoint")
	cmd.Flags().StringVar(&flagCheckpointDir, "checkpoint-dir", "", "directory of checkpoints (overrides config)")
	cmd.Flags().BoolVar(&flagAll, "all", false, "evaluate every checkpoint in the directory")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "override worker pool size")
	return cmd
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if flagWorkers > 0 {
		cfg.Eval.Workers = flagWorkers
	}

	refs, err := resolveRefs(cfg)
	if err != nil {
		return err
	}

	store, err := trajectory.Load(cfg.TaskSet.Path, cfg.TaskSet.Name, cfg.TaskSet.Format, cfg.TaskSet.Split)
	if err != nil {
		return err
	}
	if store.Len() == 0 {
		return evaldriver.ErrEmptyTaskSet
	}
	if store.Skipped() > 0 {
		fmt.Printf("Task set: %d trajectories (%d rows skipped)\n", store.Len(), store.Skipped())
	} else {
		fmt.Printf("Task set: %d trajectories\n", store.Len())
	}

	runDir, err := result.CreateRunDir(cfg.Results.Dir)
	if err != nil {
		return err
	}
	fmt.Printf("Run directory: %s\n", runDir)

	monitor, err := sink.New(cfg.Monitoring)
	if err != nil {
		return err
	}

	driver := &evaldriver.Driver{
		Engine:   reward.NewEngine(cfg.Reward),
		Store:    store,
		Workers:  cfg.Eval.Workers,
		Interval: cfg.Eval.Interval,
		Timeout:  time.Duration(cfg.Eval.TimeoutSeconds) * time.Second,
		Sink:     monitor,
		RunDir:   runDir,
	}
	resolver := &evaldriver.ExecResolver{Command: cfg.Checkpoints.GenerateCmd}

	ctx := context.Background()
	fmt.Printf("Evaluating %d checkpoint(s)...\n", len(refs))
	runs, err := driver.Benchmark(ctx, resolver, refs)
	for _, run := range runs {
		fmt.Printf("  %s: %d scored, %d skipped, mean reward %.3f\n",
			run.Checkpoint, run.Summary.Overall.Count, run.Skipped.Total(), run.Summary.Overall.MeanReward)
	}
	if err != nil {
		return err
	}

	fmt.Println("\n--- Results ---")
	return report.Generate(runDir, "table", os.Stdout)
}

func resolveRefs(cfg *config.Config) ([]evaldriver.CheckpointRef, error) {
	if flagCheckpoint != "" {
		return []evaldriver.CheckpointRef{{Path: flagCheckpoint}}, nil
	}
	dir := flagCheckpointDir
	if dir == "" {
		dir = cfg.Checkpoints.Dir
	}
	if dir == "" {
		return nil, fmt.Errorf("either --checkpoint or a checkpoint directory is required")
	}
	if !flagAll {
		return nil, fmt.Errorf("pass --all to evaluate every checkpoint under %s", dir)
	}
	refs, err := evaldriver.ScanCheckpoints(dir)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("no checkpoints found in %s", dir)
	}
	return refs, nil
}
