package runstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"joblens/internal/config"
	"joblens/internal/logging"
)

const (
	runKeyPrefix = "joblens:run:"
	runTTL       = 7 * 24 * time.Hour
)

// RedisStore persists runs as JSON documents with a TTL so finished runs
// stay queryable across restarts without growing unbounded.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the configured Redis and verifies the
// connection.
func NewRedisStore(ctx context.Context, cfg *config.Config) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	dialTimeout := cfg.Redis.Timeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logging.GetGlobalLogger().Info("Run store connected to Redis", map[string]interface{}{
		"addr": opts.Addr,
		"db":   opts.DB,
	})

	return &RedisStore{client: client}, nil
}

// Save writes the run document.
func (s *RedisStore) Save(ctx context.Context, run *Run) error {
	run.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}
	return s.client.Set(ctx, runKeyPrefix+run.ID, data, runTTL).Err()
}

// Get loads a run document.
func (s *RedisStore) Get(ctx context.Context, id string) (*Run, error) {
	data, err := s.client.Get(ctx, runKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode run: %w", err)
	}
	return &run, nil
}

// Close closes the connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// NewStore picks the Redis store when a URL is configured and falls back
// to the in-memory store otherwise.
func NewStore(ctx context.Context, cfg *config.Config) Store {
	if cfg.Redis.URL == "" {
		return NewMemoryStore()
	}
	store, err := NewRedisStore(ctx, cfg)
	if err != nil {
		logging.GetGlobalLogger().Warn("Redis unavailable, using in-memory run store", map[string]interface{}{
			"error": err.Error(),
		})
		return NewMemoryStore()
	}
	return store
}
