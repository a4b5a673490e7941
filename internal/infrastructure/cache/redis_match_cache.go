package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nilmarket/backend/internal/domain/matching"
	"github.com/redis/go-redis/v9"
)

// RedisMatchResultCache caches match results in Redis, keyed by the
// criteria fingerprint. A cache hit lets a repeat run skip both the
// external API and the local scorer.
type RedisMatchResultCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisMatchResultCache creates a match result cache backed by an existing Redis client
func NewRedisMatchResultCache(client *redis.Client) *RedisMatchResultCache {
	return &RedisMatchResultCache{
		client:    client,
		keyPrefix: "match:results:",
	}
}

// Get retrieves cached results for the given fingerprint key.
// A corrupt cache entry is treated as a miss, not an error.
func (c *RedisMatchResultCache) Get(ctx context.Context, key string) ([]matching.MatchResult, bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read match cache: %w", err)
	}

	var results []matching.MatchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false, nil
	}
	return results, true, nil
}

// Set stores results for the given fingerprint key with a TTL
func (c *RedisMatchResultCache) Set(ctx context.Context, key string, results []matching.MatchResult, ttl time.Duration) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode match results: %w", err)
	}

	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write match cache: %w", err)
	}
	return nil
}
