package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wnt/pollhub/internal/metrics"
	"github.com/wnt/pollhub/internal/models"
)

// Redis broadcasts changes over a Redis pub/sub channel so every process
// sharing the persisted store hears about mutations made by its siblings.
type Redis struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedis wraps an already-connected Redis client, usually the one the
// Redis persister holds.
func NewRedis(client *redis.Client, logger zerolog.Logger) *Redis {
	return &Redis{
		client: client,
		logger: logger.With().Str("component", "broadcast").Logger(),
	}
}

// Publish sends the change as JSON on the shared channel. Note that Redis
// pub/sub, unlike a browser BroadcastChannel, also delivers to the
// publisher's own subscription; receivers must tolerate hearing their own
// writes, which is harmless since re-reading yields the state they just
// wrote.
func (r *Redis) Publish(ctx context.Context, change models.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to encode change notification: %w", err)
	}

	if err := r.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change notification: %w", err)
	}

	metrics.RecordBroadcast(string(change.Type))
	return nil
}

// Subscribe listens on the shared channel and decodes notifications until
// ctx is cancelled. Messages that fail to decode are logged and skipped.
func (r *Redis) Subscribe(ctx context.Context) (<-chan models.Change, error) {
	sub := r.client.Subscribe(ctx, Channel)

	// Force the subscription to be established before returning so the
	// caller never misses changes published right after Subscribe.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to change channel: %w", err)
	}

	ch := make(chan models.Change, subscriberBuffer)
	go func() {
		defer close(ch)
		defer func() { _ = sub.Close() }()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change models.Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					r.logger.Warn().Err(err).Str("payload", msg.Payload).Msg("Ignoring malformed change notification")
					continue
				}
				select {
				case ch <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
