// Package sink is the boundary to the external monitoring system. Delivery
// is best-effort: callers log failures and move on, an evaluation run never
// fails because its summary could not be shipped.
package sink

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/arclearn/loanbench/internal/config"
)

// Tags identify the run a metric batch belongs to.
type Tags struct {
	Checkpoint string    `json:"checkpoint"`
	TaskSet    string    `json:"task_set"`
	RunID      string    `json:"run_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// Sink accepts one flat metric mapping per finalized run. Implementations
// must be safe for concurrent use.
type Sink interface {
	Emit(ctx context.Context, tags Tags, values map[string]float64) error
}

// New builds the configured sink. The env file, when set, is loaded first so
// sink credentials can live outside the config file.
func New(cfg config.Monitoring) (Sink, error) {
	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil {
			return nil, fmt.Errorf("loading sink env file: %w", err)
		}
	}
	switch cfg.Kind {
	case "log":
		return &LogSink{}, nil
	case "http":
		return NewHTTPSink(cfg.URL), nil
	case "redis":
		return NewRedisSink(cfg.Addr), nil
	default:
		return nil, fmt.Errorf("unknown sink kind %q", cfg.Kind)
	}
}

// LogSink writes summaries to the process log. Default when no monitoring
// backend is configured.
type LogSink struct{}

func (s *LogSink) Emit(_ context.Context, tags Tags, values map[string]float64) error {
	log.Printf("run %s checkpoint=%s taskset=%s: %d metrics, mean_reward=%.3f",
		tags.RunID, tags.Checkpoint, tags.TaskSet, len(values), values["overall/mean_reward"])
	return nil
}
