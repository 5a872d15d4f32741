package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DeadLetter is a job the pool gave up on. Entries live in the Redis list
// dlq:<queue>, newest first, until an operator clears them.
type DeadLetter struct {
	Queue    string          `json:"queue"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	FailedAt time.Time       `json:"failed_at"`
}

func deadLetterKey(queue string) string { return "dlq:" + queue }

// PushDeadLetter records a failed job. Redis errors are only logged; the job
// has already left its queue and there is nowhere else to put it.
func PushDeadLetter(ctx context.Context, rdb *redis.Client, dl DeadLetter) {
	if dl.FailedAt.IsZero() {
		dl.FailedAt = time.Now().UTC()
	}
	data, err := json.Marshal(dl)
	if err != nil {
		log.Error().Err(err).Str("queue", dl.Queue).Msg("dead letter: encode")
		return
	}
	if err := rdb.LPush(ctx, deadLetterKey(dl.Queue), data).Err(); err != nil {
		log.Error().Err(err).Str("queue", dl.Queue).Str("type", dl.Type).Msg("dead letter: lost failed job")
		return
	}
	log.Warn().Str("queue", dl.Queue).Str("type", dl.Type).Str("reason", dl.Reason).Msg("job dead-lettered")
}

// DeadLetterCount is what /health reports as import_dlq.
func DeadLetterCount(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, deadLetterKey(queue)).Result()
}

// ListDeadLetters returns up to limit entries, newest first. Entries that do
// not decode are skipped.
func ListDeadLetters(ctx context.Context, rdb *redis.Client, queue string, limit int64) ([]DeadLetter, error) {
	raw, err := rdb.LRange(ctx, deadLetterKey(queue), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DeadLetter, 0, len(raw))
	for _, r := range raw {
		var dl DeadLetter
		if json.Unmarshal([]byte(r), &dl) == nil {
			out = append(out, dl)
		}
	}
	return out, nil
}
