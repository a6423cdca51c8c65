package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/se-evidence-api/pkg/errors"
)

const (
	cacheNamespace = "se-evidence:"
	scanBatch      = 200
)

// CacheRepository stores JSON-encoded search results in Redis under a
// namespace shared by every key it touches.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, logger: logger}
}

// Get decodes the value at key into dest or returns ErrCacheMiss.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, cacheNamespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return appErrors.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		// a stale shape from an older release reads as a miss and is overwritten
		r.logger.Debug("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return appErrors.ErrCacheMiss
	}
	return nil
}

// Set stores value at key for ttl.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	if err := r.client.Set(ctx, cacheNamespace+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// DeleteByPattern unlinks every key matching pattern, a batch per scan page.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.client == nil {
		return nil
	}

	var cursor uint64
	removed := 0
	for {
		keys, next, err := r.client.Scan(ctx, cursor, cacheNamespace+pattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := r.client.Unlink(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis unlink %s: %w", pattern, err)
			}
			removed += len(keys)
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	r.logger.Debug("cache invalidated", zap.String("pattern", pattern), zap.Int("keys", removed))
	return nil
}
