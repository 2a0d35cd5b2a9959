package evaldriver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ExecResolver resolves checkpoints for the standalone benchmark by shelling
// out to an external generation command. The command receives the checkpoint
// path as its last argument, the prompt on stdin, and writes the response to
// stdout. This keeps model loading fully outside the core.
type ExecResolver struct {
	Command []string
}

func (r *ExecResolver) Resolve(_ context.Context, ref CheckpointRef) (Generator, error) {
	if len(r.Command) == 0 {
		return nil, fmt.Errorf("no generate command configured")
	}
	if _, err := os.Stat(ref.Path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointNotFound, ref.Path)
	}
	return &execGenerator{command: r.Command, checkpoint: ref.Path}, nil
}

type execGenerator struct {
	command    []string
	checkpoint string
}

func (g *execGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := append(append([]string{}, g.command[1:]...), g.checkpoint)
	cmd := exec.CommandContext(ctx, g.command[0], args...)
	cmd.Stdin = strings.NewReader(prompt)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("generate command: %w (%s)", err, strings.TrimSpace(errOut.String()))
	}
	return out.String(), nil
}
