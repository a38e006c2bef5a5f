package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"linedry/internal/config"
	"linedry/internal/metrics"
)

const (
	// ForecastTTL bounds how stale a cached forecast response may be.
	ForecastTTL = 30 * time.Minute
	// GeocodeTTL is long because place coordinates do not move.
	GeocodeTTL = 24 * time.Hour
)

// Cache is a JSON response cache backed by Redis. A nil *Cache is a
// valid no-op cache, so callers can run without Redis.
type Cache struct {
	client *redis.Client
	prefix string
}

// New connects to Redis using the environment-derived config. It
// returns an error if the server cannot be reached.
func New(ctx context.Context) (*Cache, error) {
	redisCfg := config.GetRedisConfig()
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Cache{client: client, prefix: redisCfg.KeyPrefix}, nil
}

// Get unmarshals the cached value for key into dest. The second return
// value reports whether the key was present.
func (c *Cache) Get(ctx context.Context, endpoint, key string, dest interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}

	data, err := c.client.Get(ctx, c.fullKey(endpoint, key)).Bytes()
	if err == redis.Nil {
		metrics.CacheMissesTotal.WithLabelValues(endpoint).Inc()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// A corrupt entry is treated as a miss so the caller refetches.
		metrics.CacheMissesTotal.WithLabelValues(endpoint).Inc()
		return false, nil
	}

	metrics.CacheHitsTotal.WithLabelValues(endpoint).Inc()
	return true, nil
}

// Set stores value under key with the given TTL.
func (c *Cache) Set(ctx context.Context, endpoint, key string, value interface{}, ttl time.Duration) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling cache value: %w", err)
	}

	if err := c.client.Set(ctx, c.fullKey(endpoint, key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// ForecastKey builds a cache key for a coordinate pair. Coordinates are
// rounded to 4 decimal places so nearby lookups share an entry.
func ForecastKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f:%.4f", lat, lon)
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) fullKey(endpoint, key string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, endpoint, key)
}
