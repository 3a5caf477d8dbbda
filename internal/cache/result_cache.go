package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/El-Ikhsan/ktp-extractor/internal/models"
)

// ResultCache stores completed extraction results so a re-submitted image
// skips the detector and OCR engines entirely. Keys combine the image
// digest with the engine name; the same photo processed by two engines
// yields two independent entries.
type ResultCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewResultCache creates a ResultCache with the given entry lifetime.
func NewResultCache(redisClient *RedisClient, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ResultCache{redis: redisClient, ttl: ttl}
}

func (c *ResultCache) key(digestAndEngine string) string {
	return fmt.Sprintf("extraction:result:%s", digestAndEngine)
}

// Get retrieves a cached extraction record. A cache miss returns (nil, nil).
func (c *ResultCache) Get(ctx context.Context, key string) (*models.ExtractionRecord, error) {
	jsonData, err := c.redis.Get(ctx, c.key(key))
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec models.ExtractionRecord
	if err := json.Unmarshal([]byte(jsonData), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached extraction: %w", err)
	}
	return &rec, nil
}

// Set stores an extraction record under the digest+engine key.
func (c *ResultCache) Set(ctx context.Context, key string, rec *models.ExtractionRecord) error {
	jsonData, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal extraction record: %w", err)
	}
	return c.redis.Set(ctx, c.key(key), string(jsonData), c.ttl)
}
