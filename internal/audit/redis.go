package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRecorder appends events to a Redis stream.
type RedisRecorder struct {
	client *redis.Client
	stream string
}

func NewRedisRecorder(client *redis.Client, stream string) *RedisRecorder {
	return &RedisRecorder{client: client, stream: stream}
}

func (r *RedisRecorder) Record(ctx context.Context, event Event) error {
	err := r.client.XAdd(ctx, streamArgs(r.stream, event)).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", r.stream, err)
	}
	return nil
}

// streamArgs keeps field order stable so entries read back predictably.
func streamArgs(stream string, event Event) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: stream,
		Values: []interface{}{
			"id", event.ID,
			"type", string(event.Type),
			"activity", event.Activity,
			"email", event.Email,
			"occurredAt", event.OccurredAt.Format(time.RFC3339Nano),
		},
	}
}
