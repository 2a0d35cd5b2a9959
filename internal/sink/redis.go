package sink

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSink writes each run's metrics into a hash keyed by run id and keeps
// a sorted index of runs per checkpoint for dashboard queries. The go-redis
// client serializes its own writes, so the sink is safe for concurrent use.
type RedisSink struct {
	client *redis.Client
}

func NewRedisSink(addr string) *RedisSink {
	return &RedisSink{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		}),
	}
}

func runKey(runID string) string {
	return fmt.Sprintf("loanbench:run:%s", runID)
}

func checkpointIndexKey(checkpoint string) string {
	return fmt.Sprintf("loanbench:checkpoint:%s:runs", checkpoint)
}

func (s *RedisSink) Emit(ctx context.Context, tags Tags, values map[string]float64) error {
	fields := make(map[string]interface{}, len(values)+3)
	for k, v := range values {
		fields[k] = v
	}
	fields["checkpoint"] = tags.Checkpoint
	fields["task_set"] = tags.TaskSet
	fields["timestamp"] = tags.Timestamp.UTC().Format(time.RFC3339)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, runKey(tags.RunID), fields)
	pipe.ZAdd(ctx, checkpointIndexKey(tags.Checkpoint), redis.Z{
		Score:  float64(tags.Timestamp.UnixMilli()),
		Member: tags.RunID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing run %s to redis: %w", tags.RunID, err)
	}
	return nil
}
