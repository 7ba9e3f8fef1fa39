package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/resumescore/backend/internal/domain/scoring"
	"github.com/resumescore/backend/internal/domain/shared"
)

const defaultScoreTTL = 24 * time.Hour

// RedisScoreCache implements scoring.ScoreCache using Redis.
// It lets multiple instances share scores for identical resumes without
// spending another model call.
type RedisScoreCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisScoreCache creates a new Redis-based score cache
func NewRedisScoreCache(cfg RedisConfig) (*RedisScoreCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultScoreTTL
	}

	return &RedisScoreCache{
		client:    client,
		keyPrefix: "resume:score:",
		ttl:       ttl,
	}, nil
}

// NewRedisScoreCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisScoreCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisScoreCache {
	if keyPrefix == "" {
		keyPrefix = "resume:score:"
	}
	if ttl <= 0 {
		ttl = defaultScoreTTL
	}
	return &RedisScoreCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the cached score for a digest, or shared.ErrNotFound on a miss
func (c *RedisScoreCache) Get(ctx context.Context, digest string) (*scoring.Score, error) {
	payload, err := c.client.Get(ctx, c.keyPrefix+digest).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cached score: %w", err)
	}

	var score scoring.Score
	if err := json.Unmarshal(payload, &score); err != nil {
		// A malformed entry is treated as a miss so it gets overwritten
		return nil, shared.ErrNotFound
	}
	if err := score.Validate(); err != nil {
		return nil, shared.ErrNotFound
	}
	return &score, nil
}

// Set stores a score under the digest with the configured TTL
func (c *RedisScoreCache) Set(ctx context.Context, digest string, score scoring.Score) error {
	payload, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("failed to serialize score: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+digest, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache score: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisScoreCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisScoreCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisScoreCache implements ScoreCache
var _ scoring.ScoreCache = (*RedisScoreCache)(nil)
