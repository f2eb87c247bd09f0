package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wnt/pollhub/internal/models"
)

// RedisPersister stores the serialized state under a single versioned
// Redis key. Multiple processes sharing the key get last-write-wins
// semantics from Redis's single-key atomicity.
type RedisPersister struct {
	client *redis.Client
	key    string
	logger zerolog.Logger
}

// NewRedisPersister connects to Redis and verifies the connection.
func NewRedisPersister(redisURL string, logger zerolog.Logger) (*RedisPersister, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info().Str("redis_url", redisURL).Msg("Connected to Redis successfully")

	return &RedisPersister{
		client: client,
		key:    StoreKey(),
		logger: logger.With().Str("component", "redis_storage").Logger(),
	}, nil
}

// Load reads the state payload from the versioned key.
func (r *RedisPersister) Load(ctx context.Context) (models.AppState, bool, error) {
	payload, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.AppState{}, false, nil
		}
		return models.AppState{}, false, fmt.Errorf("failed to load state from Redis: %w", err)
	}

	state, err := Decode(payload)
	if err != nil {
		return models.AppState{}, false, err
	}
	return state, true, nil
}

// Save overwrites the state payload. The key never expires.
func (r *RedisPersister) Save(ctx context.Context, state models.AppState) error {
	payload, err := Encode(state)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to save state to Redis: %w", err)
	}

	r.logger.Debug().Int("bytes", len(payload)).Msg("Persisted state")
	return nil
}

// Client exposes the underlying connection so the broadcast package can
// share it for pub/sub.
func (r *RedisPersister) Client() *redis.Client {
	return r.client
}

// Close closes the Redis connection.
func (r *RedisPersister) Close() error {
	return r.client.Close()
}
