package sink

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"sjsage522/brochureworker/internal/brochure"
	"sjsage522/brochureworker/logger"
	apperrors "sjsage522/brochureworker/pkg/errors"
)

// RedisSink publishes the collection of a run to a Redis stream
type RedisSink struct {
	client          *redis.Client
	stream          string
	streamMaxLength int64
	runID           string
}

// NewRedisSink creates a new Redis sink. Each run adds a single stream entry
// keyed by runID holding the base64 encoded JSON array.
func NewRedisSink(addr string, db int, stream string, streamMaxLength int, runID string) *RedisSink {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisSink{
		client:          client,
		stream:          stream,
		streamMaxLength: int64(streamMaxLength),
		runID:           runID,
	}
}

// Ping checks the connection to Redis
func (r *RedisSink) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Write publishes the collection and trims the stream
func (r *RedisSink) Write(ctx context.Context, records []brochure.Record) error {
	if records == nil {
		records = []brochure.Record{}
	}
	message, err := json.Marshal(records)
	if err != nil {
		return apperrors.NewPersistence("failed to encode brochures", err)
	}

	encodedMessage := base64.StdEncoding.EncodeToString(message)

	err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{
			r.runID: encodedMessage,
		},
	}).Err()
	if err != nil {
		return apperrors.NewPersistence("failed to publish to stream "+r.stream, err)
	}

	if r.streamMaxLength > 0 {
		if err := r.client.XTrimMaxLen(ctx, r.stream, r.streamMaxLength).Err(); err != nil {
			logger.ForSink("redis").Warn().Err(err).Str("stream", r.stream).Msg("Failed to trim stream")
		}
	}

	logger.ForSink("redis").Info().
		Str("stream", r.stream).
		Str("run_id", r.runID).
		Int("count", len(records)).
		Msg("Published brochures")
	return nil
}

// Close closes the Redis connection
func (r *RedisSink) Close() error {
	return r.client.Close()
}
