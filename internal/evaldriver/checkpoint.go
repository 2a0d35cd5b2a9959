package evaldriver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// ErrCheckpointNotFound indicates a checkpoint reference that the resolver
// could not load. It is a configuration error: reported, never retried.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// CheckpointRef is an opaque reference to a trained-model snapshot. Only the
// resolver interprets the path; the driver uses it as run identity and scan
// order.
type CheckpointRef struct {
	Path string
	Step int
}

func (r CheckpointRef) Name() string {
	if r.Path != "" {
		return filepath.Base(r.Path)
	}
	return fmt.Sprintf("step-%d", r.Step)
}

// Generator is the model handle supplied by the external trainer or
// checkpoint resolver. Implementations must be safe for concurrent calls.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Resolver turns a checkpoint reference into a usable model handle.
// Resolution failure surfaces as ErrCheckpointNotFound.
type Resolver interface {
	Resolve(ctx context.Context, ref CheckpointRef) (Generator, error)
}

var stepSuffix = regexp.MustCompile(`[-_](\d+)$`)

// ScanCheckpoints lists checkpoint directories under dir in ascending step
// order. Step numbers come from a trailing -N or _N in the directory name
// (checkpoint-1500, global_step_200); unnumbered entries sort last by name.
func ScanCheckpoints(dir string) ([]CheckpointRef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning checkpoint dir %s: %w", dir, err)
	}
	var refs []CheckpointRef
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		ref := CheckpointRef{Path: filepath.Join(dir, e.Name()), Step: -1}
		if m := stepSuffix.FindStringSubmatch(e.Name()); m != nil {
			if step, err := strconv.Atoi(m[1]); err == nil {
				ref.Step = step
			}
		}
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if (a.Step >= 0) != (b.Step >= 0) {
			return a.Step >= 0
		}
		if a.Step != b.Step {
			return a.Step < b.Step
		}
		return a.Path < b.Path
	})
	return refs, nil
}
