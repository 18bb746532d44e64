package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coscheck/coscheck/internal/config"
	"github.com/coscheck/coscheck/internal/domain/table"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/pkg/errors"
)

type redisEntry struct {
	Version string                 `json:"version"`
	Table   *table.NormalizedTable `json:"table"`
}

// RedisCache shares loaded tables between instances. One key per source; the
// stored entry carries the version marker it was built from.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logging.Logger
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg config.RedisConfig, logger logging.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "connect redis "+cfg.Addr)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "coscheck:table:"
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    cfg.DefaultTTL,
		logger: logger.Named("redis-cache"),
	}, nil
}

var _ TableCache = (*RedisCache)(nil)

func (c *RedisCache) key(source string) string {
	return c.prefix + source
}

func (c *RedisCache) Get(ctx context.Context, source, version string) (*table.NormalizedTable, bool, error) {
	data, err := c.client.Get(ctx, c.key(source)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "get cached table "+source)
	}

	var e redisEntry
	if err := json.Unmarshal(data, &e); err != nil {
		// A corrupt entry is a miss; the next Put repairs it.
		c.logger.Warn("corrupt cache entry dropped", logging.String("source", source), logging.Err(err))
		_ = c.client.Del(ctx, c.key(source)).Err()
		return nil, false, nil
	}
	if e.Version != version {
		return nil, false, nil
	}
	return e.Table, true, nil
}

func (c *RedisCache) Put(ctx context.Context, source, version string, t *table.NormalizedTable) error {
	data, err := json.Marshal(redisEntry{Version: version, Table: t})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode cached table "+source)
	}
	if err := c.client.Set(ctx, c.key(source), data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "put cached table "+source)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, source string) error {
	if err := c.client.Del(ctx, c.key(source)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "invalidate cached table "+source)
	}
	return nil
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
