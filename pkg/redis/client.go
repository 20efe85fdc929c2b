package redis

import (
	"context"
	"time"

	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type client struct {
	logger  *logger.Logger
	config  *Config
	cmdable redis.UniversalClient
}

// NewClient creates a new Redis client with the provided logger and configuration.
func NewClient(logger *logger.Logger, config *Config) Client {
	return &client{
		logger: logger,
		config: config,
	}
}

func (c *client) validate() error {
	if c.config == nil {
		return errors.NewErrorDetails("Redis config is nil", string(errors.RedisConfigError), "connect")
	}

	if len(c.config.Addrs) == 0 {
		return errors.NewErrorDetails("Redis addresses are empty", string(errors.RedisConfigError), "connect")
	}

	if c.config.Mode != Standalone && c.config.Mode != Cluster {
		return errors.NewErrorDetails("Invalid Redis mode", string(errors.RedisConfigError), "connect")
	}

	if c.config.ConnectTimeout <= 0 {
		return errors.NewErrorDetails("Invalid Redis connect timeout", string(errors.RedisConfigError), "connect")
	}

	if c.config.PoolSize <= 0 {
		return errors.NewErrorDetails("Invalid Redis pool size", string(errors.RedisConfigError), "connect")
	}

	if c.config.PoolTimeout <= 0 {
		return errors.NewErrorDetails("Invalid Redis pool timeout", string(errors.RedisConfigError), "connect")
	}

	if c.config.MaxRetries < 0 {
		return errors.NewErrorDetails("Invalid Redis max retries", string(errors.RedisConfigError), "connect")
	}

	if c.config.MinRetryBackoff < 0 || c.config.MaxRetryBackoff < 0 {
		return errors.NewErrorDetails("Invalid Redis retry backoff", string(errors.RedisConfigError), "connect")
	}

	return nil
}

func (c *client) Connect(ctx context.Context) error {
	if err := c.validate(); err != nil {
		return err
	}

	switch c.config.Mode {
	case Standalone:
		c.cmdable = redis.NewClient(&redis.Options{
			Addr:            c.config.Addrs[0],
			Username:        c.config.Username,
			Password:        c.config.Password,
			DB:              c.config.DB,
			MaxRetries:      c.config.MaxRetries,
			MinRetryBackoff: c.config.MinRetryBackoff,
			MaxRetryBackoff: c.config.MaxRetryBackoff,
			DialTimeout:     c.config.ConnectTimeout,
			ReadTimeout:     c.config.ConnectTimeout,
			WriteTimeout:    c.config.ConnectTimeout,
			PoolSize:        c.config.PoolSize,
			PoolTimeout:     c.config.PoolTimeout,
		})
	case Cluster:
		c.cmdable = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           c.config.Addrs,
			Username:        c.config.Username,
			Password:        c.config.Password,
			MaxRetries:      c.config.MaxRetries,
			MinRetryBackoff: c.config.MinRetryBackoff,
			MaxRetryBackoff: c.config.MaxRetryBackoff,
			DialTimeout:     c.config.ConnectTimeout,
			ReadTimeout:     c.config.ConnectTimeout,
			WriteTimeout:    c.config.ConnectTimeout,
			PoolSize:        c.config.PoolSize,
			PoolTimeout:     c.config.PoolTimeout,
		})
	}

	if err := c.cmdable.Ping(ctx).Err(); err != nil {
		c.logger.Error(errors.TracerFromError(err), logger.NewField("addrs", c.config.Addrs))
		return errors.NewErrorDetails("Failed to connect to Redis", string(errors.RedisConnectionError), "connect")
	}

	c.logger.Info("Connected to Redis", logger.NewField("mode", c.config.Mode))
	return nil
}

func (c *client) Disconnect(ctx context.Context) error {
	if c.cmdable == nil {
		return nil
	}
	if err := c.cmdable.Close(); err != nil {
		return errors.NewErrorDetails("Failed to disconnect from Redis", string(errors.RedisDisconnectionError), "disconnect")
	}
	return nil
}

func (c *client) Ping(ctx context.Context) error {
	if err := c.cmdable.Ping(ctx).Err(); err != nil {
		return errors.NewErrorDetails("Failed to ping Redis", string(errors.RedisPingError), "ping")
	}
	return nil
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.cmdable.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.NewErrorDetails("Failed to get value from Redis", string(errors.RedisGetError), "get")
	}
	return val, nil
}

func (c *client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if err := c.cmdable.Set(ctx, key, value, expiration).Err(); err != nil {
		return errors.NewErrorDetails("Failed to set value in Redis", string(errors.RedisSetError), "set")
	}
	return nil
}

func (c *client) Del(ctx context.Context, keys ...string) (int64, error) {
	deleted, err := c.cmdable.Del(ctx, keys...).Result()
	if err != nil {
		return 0, errors.NewErrorDetails("Failed to delete keys from Redis", string(errors.RedisDelError), "del")
	}
	return deleted, nil
}

func (c *client) ZAdd(ctx context.Context, key string, members ...redis.Z) (int64, error) {
	added, err := c.cmdable.ZAdd(ctx, key, members...).Result()
	if err != nil {
		return 0, errors.NewErrorDetails("Failed to add members to sorted set in Redis", string(errors.RedisSetError), "zadd")
	}
	return added, nil
}

func (c *client) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	members, err := c.cmdable.ZRevRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, errors.NewErrorDetails("Failed to read sorted set from Redis", string(errors.RedisGetError), "zrevrange")
	}
	return members, nil
}

func (c *client) Key(parts ...string) string {
	if c.config == nil {
		return DefaultConfig().Key(parts...)
	}
	return c.config.Key(parts...)
}
