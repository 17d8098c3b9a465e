// Package audit ships counted violations to the platform's proctoring
// pipeline through a Redis queue. Strictly fire-and-forget: a full buffer
// or a dead Redis never touches session state.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hireside/proctor-gateway/internal/config"
	"github.com/hireside/proctor-gateway/internal/model"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	bufferSize   = 256
)

type violationEntry struct {
	SessionID string `json:"session_id"`
	JobID     string `json:"job_id"`
	Kind      string `json:"kind"`
	Timestamp int64  `json:"timestamp"`
}

// RedisJournal buffers violation entries in memory and flushes them to the
// violation queue in batches.
type RedisJournal struct {
	rdb   *redis.Client
	log   zerolog.Logger
	queue chan violationEntry
}

// NewRedisJournal creates a RedisJournal. Start must be called for entries
// to be flushed.
func NewRedisJournal(rdb *redis.Client, log zerolog.Logger) *RedisJournal {
	return &RedisJournal{
		rdb:   rdb,
		log:   log.With().Str("component", "violation_journal").Logger(),
		queue: make(chan violationEntry, bufferSize),
	}
}

// Record enqueues one violation. Never blocks: if the buffer is full the
// entry is dropped and logged.
func (j *RedisJournal) Record(sessionID uuid.UUID, jobID string, evt model.ViolationEvent) {
	entry := violationEntry{
		SessionID: sessionID.String(),
		JobID:     jobID,
		Kind:      string(evt.Kind),
		Timestamp: evt.OccurredAt.Unix(),
	}
	select {
	case j.queue <- entry:
	default:
		j.log.Warn().Str("kind", entry.Kind).Msg("Journal buffer full, dropping violation entry")
	}
}

// Start drains the buffer until ctx is cancelled, flushing on batch size
// or timeout. Run in its own goroutine.
func (j *RedisJournal) Start(ctx context.Context) {
	j.log.Info().Msg("Violation journal started")

	buffer := make([]violationEntry, 0, BatchSize)
	ticker := time.NewTicker(BatchTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.shutdown(buffer)
			return
		case entry := <-j.queue:
			buffer = append(buffer, entry)
			if len(buffer) >= BatchSize {
				j.flush(ctx, buffer)
				buffer = buffer[:0]
			}
		case <-ticker.C:
			if len(buffer) > 0 {
				j.flush(ctx, buffer)
				buffer = buffer[:0]
			}
		}
	}
}

// flush pushes a batch onto the violation queue with a single pipeline.
// Failures are logged and the batch is dropped — the journal is advisory.
func (j *RedisJournal) flush(ctx context.Context, batch []violationEntry) {
	pipe := j.rdb.Pipeline()
	for _, entry := range batch {
		data, _ := json.Marshal(entry)
		pipe.RPush(ctx, config.JournalKey.ViolationQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		j.log.Error().Err(err).Int("count", len(batch)).Msg("Journal flush failed, dropping batch")
	}
}

func (j *RedisJournal) shutdown(buffer []violationEntry) {
	j.log.Info().Msg("Journal stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Drain whatever is still sitting in the channel.
	for {
		select {
		case entry := <-j.queue:
			buffer = append(buffer, entry)
		default:
			if len(buffer) > 0 {
				j.flush(shutdownCtx, buffer)
			}
			return
		}
	}
}
