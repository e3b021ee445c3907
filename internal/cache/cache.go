package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// ProductListKey holds the JSON encoded public catalogue.
const ProductListKey = "storefront:products:all"

// ProductCache caches the public product list.
type ProductCache interface {
	// GetProducts returns the cached list and whether it was present.
	GetProducts(ctx context.Context) ([]model.Product, bool, error)

	// SetProducts stores the list until the TTL expires.
	SetProducts(ctx context.Context, products []model.Product) error

	// Invalidate drops the cached list after the catalogue or stock changed.
	Invalidate(ctx context.Context) error
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("redis connection established")
	return client, nil
}

// Open builds the ProductCache for cfg and returns a func that releases its
// Redis connection. A disabled or unreachable Redis yields the no-op cache.
func Open(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (ProductCache, func()) {
	if !cfg.Enabled {
		logger.Info().Msg("product cache disabled")
		return NewNoopProductCache(), func() {}
	}

	client, err := NewRedisClient(ctx, cfg, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to connect to redis, serving catalogue without cache")
		return NewNoopProductCache(), func() {}
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
	return NewRedisProductCache(client, cfg.TTL, logger), closeFn
}

// redisProductCache implements ProductCache on go-redis.
type redisProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisProductCache creates a Redis-backed ProductCache.
func NewRedisProductCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) ProductCache {
	return &redisProductCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("cache", "product").Logger(),
	}
}

func (c *redisProductCache) GetProducts(ctx context.Context) ([]model.Product, bool, error) {
	val, err := c.client.Get(ctx, ProductListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read product cache: %w", err)
	}

	var products []model.Product
	if err := json.Unmarshal(val, &products); err != nil {
		c.logger.Warn().Err(err).Msg("discarding undecodable product cache entry")
		return nil, false, nil
	}

	c.logger.Debug().Int("count", len(products)).Msg("product cache hit")
	return products, true, nil
}

func (c *redisProductCache) SetProducts(ctx context.Context, products []model.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode products: %w", err)
	}

	if err := c.client.Set(ctx, ProductListKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write product cache: %w", err)
	}
	return nil
}

func (c *redisProductCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, ProductListKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate product cache: %w", err)
	}
	return nil
}

// noopProductCache never stores anything; used when Redis is disabled.
type noopProductCache struct{}

// NewNoopProductCache returns a ProductCache that always misses.
func NewNoopProductCache() ProductCache {
	return noopProductCache{}
}

func (noopProductCache) GetProducts(context.Context) ([]model.Product, bool, error) {
	return nil, false, nil
}

func (noopProductCache) SetProducts(context.Context, []model.Product) error { return nil }

func (noopProductCache) Invalidate(context.Context) error { return nil }
