package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yigit/questionbank/internal/pkg/logger"
)

// Cache errors
var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

// Options configures the redis client
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to redis. It returns nil when the server does not
// answer a ping so callers can run without the cache.
func NewRedisClient(ctx context.Context, opts Options) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", opts.Addr).Msg("Redis unavailable, caching disabled")
		_ = client.Close()
		return nil
	}
	logger.Info().Str("addr", opts.Addr).Msg("Connected to Redis")
	return client
}

// Helper is a JSON cache-aside helper over one key prefix. A nil client
// turns every operation into a miss.
type Helper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewHelper creates a new cache helper instance
func NewHelper(client *redis.Client, prefix string, ttl time.Duration) *Helper {
	return &Helper{client: client, prefix: prefix, ttl: ttl}
}

// Enabled reports whether a redis client is attached
func (h *Helper) Enabled() bool {
	return h != nil && h.client != nil
}

func (h *Helper) key(k string) string {
	return h.prefix + k
}

// Get retrieves and unmarshals data from cache
func (h *Helper) Get(ctx context.Context, key string, dest interface{}) error {
	if !h.Enabled() {
		return ErrCacheNotAvailable
	}

	data, err := h.client.Get(ctx, h.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

// Set marshals and stores data in cache
func (h *Helper) Set(ctx context.Context, key string, value interface{}) error {
	if !h.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	return h.client.Set(ctx, h.key(key), data, h.ttl).Err()
}

// GetOrLoad implements cache-aside: on a miss it calls load, stores the
// result and decodes it into dest. Cache failures never fail the call.
func GetOrLoad[T any](ctx context.Context, h *Helper, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	err := h.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheNotFound) && !errors.Is(err, ErrCacheNotAvailable) {
		logger.Warn().Err(err).Str("key", key).Msg("Cache get error, proceeding to fetch")
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if err := h.Set(ctx, key, value); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Cache set error")
	}
	return value, nil
}

// HealthCheck verifies cache connectivity
func (h *Helper) HealthCheck(ctx context.Context) error {
	if !h.Enabled() {
		return ErrCacheNotAvailable
	}
	if err := h.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}
