// Package evaldriver runs the reward engine over an evaluation task set
// against one or more checkpoints. Per-example scoring fans out over a
// bounded worker pool; the reduction into a summary is single-threaded so a
// run's aggregate never depends on completion order.
package evaldriver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/arclearn/loanbench/internal/metrics"
	"github.com/arclearn/loanbench/internal/result"
	"github.com/arclearn/loanbench/internal/reward"
	"github.com/arclearn/loanbench/internal/sink"
	"github.com/arclearn/loanbench/internal/trajectory"
)

// ErrEmptyTaskSet indicates an evaluation task set with zero trajectories.
// Fatal: an empty run would produce a misleading summary.
var ErrEmptyTaskSet = errors.New("evaluation task set is empty")

// Driver applies the reward engine across the task set. All fields are fixed
// at construction; a Driver is safe for concurrent evaluations.
type Driver struct {
	Engine   *reward.Engine
	Store    *trajectory.Store
	Workers  int
	Interval int
	Timeout  time.Duration
	Sink     sink.Sink
	RunDir   string
}

// outcome is one worker's slot. Exactly one field is meaningful.
type outcome struct {
	record   *reward.Record
	invalid  bool
	timedOut bool
	failed   bool
}

// EvaluateCheckpoint scores the full task set against one resolved model
// handle and returns the finalized run. Per-example validation errors and
// timeouts exclude that example and are counted; they never abort the run.
// Context expiry yields a partial run, not an error.
func (d *Driver) EvaluateCheckpoint(ctx context.Context, ref CheckpointRef, gen Generator) (*result.Run, error) {
	items := d.Store.All()
	if len(items) == 0 {
		return nil, ErrEmptyTaskSet
	}

	started := time.Now().UTC()
	slots := make([]outcome, len(items))

	runPool(ctx, d.Workers, len(items), func(ctx context.Context, i int) {
		if ctx.Err() != nil {
			slots[i].timedOut = true
			return
		}
		resp, err := gen.Generate(ctx, items[i].Prompt)
		if err != nil {
			if ctx.Err() != nil {
				slots[i].timedOut = true
			} else {
				log.Printf("warning: generation failed for %s: %v", items[i].ID, err)
				slots[i].failed = true
			}
			return
		}
		rec, err := d.Engine.Score(items[i], resp)
		if err != nil {
			log.Printf("warning: skipping %s: %v", items[i].ID, err)
			slots[i].invalid = true
			return
		}
		slots[i].record = &rec
	})

	// Single-threaded reduction in task-set order.
	run := &result.Run{
		ID:         uuid.NewString(),
		Checkpoint: ref.Name(),
		TaskSet:    d.Store.Name(),
		StartedAt:  started,
	}
	if ref.Path == "" {
		run.TrainStep = ref.Step
	}
	var records []reward.Record
	for _, s := range slots {
		switch {
		case s.record != nil:
			records = append(records, *s.record)
		case s.timedOut:
			run.Skipped.TimedOut++
		case s.failed:
			run.Skipped.Failed++
		default:
			run.Skipped.Invalid++
		}
	}
	run.Records = records
	run.Summary = metrics.Summarize(records)
	run.DurationS = int(time.Since(started).Seconds())

	d.finalize(run)
	return run, nil
}

// finalize persists the run and forwards its summary. Both are best-effort
// relative to the run itself.
func (d *Driver) finalize(run *result.Run) {
	if d.RunDir != "" {
		if err := result.WriteRun(d.RunDir, run); err != nil {
			log.Printf("warning: persisting run %s: %v", run.ID, err)
		}
	}
	if d.Sink == nil {
		return
	}
	tags := sink.Tags{
		Checkpoint: run.Checkpoint,
		TaskSet:    run.TaskSet,
		RunID:      run.ID,
		Timestamp:  run.StartedAt,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.Sink.Emit(ctx, tags, metrics.Flatten(run.Summary)); err != nil {
		log.Printf("warning: emitting run %s to monitoring sink: %v", run.ID, err)
	}
}

// Benchmark evaluates the task set against each checkpoint in turn. Runs are
// sequential across checkpoints so only one model stays loaded at a time;
// examples within a run still use the worker pool. A checkpoint that fails
// to resolve aborts the remaining checkpoints and returns the runs completed
// so far alongside the error.
func (d *Driver) Benchmark(ctx context.Context, resolver Resolver, refs []CheckpointRef) ([]*result.Run, error) {
	if d.Store.Len() == 0 {
		return nil, ErrEmptyTaskSet
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("no checkpoints to evaluate")
	}

	var runs []*result.Run
	for _, ref := range refs {
		gen, err := resolver.Resolve(ctx, ref)
		if err != nil {
			return runs, fmt.Errorf("resolving checkpoint %s: %w", ref.Name(), err)
		}
		run, err := d.EvaluateCheckpoint(ctx, ref, gen)
		if err != nil {
			return runs, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// ShouldEval reports whether an interleaved evaluation is due at the given
// training step.
func (d *Driver) ShouldEval(step int) bool {
	return d.Interval > 0 && step > 0 && step%d.Interval == 0
}

// EvaluateStep is the interleaved-mode entry point, called by the trainer
// with its active model handle. The configured timeout bounds how long the
// training loop blocks; on expiry the remaining examples are marked timed
// out and the partial run is returned.
func (d *Driver) EvaluateStep(ctx context.Context, step int, gen Generator) (*result.Run, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	return d.EvaluateCheckpoint(ctx, CheckpointRef{Step: step}, gen)
}
