package redis

import (
	"strings"
	"time"
)

// Mode represents the mode of the Redis client.
type Mode string

const (
	// Standalone Mode is for a single Redis instance.
	Standalone Mode = "standalone"
	// Cluster Mode is for a Redis cluster setup.
	Cluster Mode = "cluster"
)

// Config holds the configuration for the Redis client.
type Config struct {
	Mode     Mode   `env:"MODE" envDefault:"standalone"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`

	Addrs []string `env:"ADDRS" envSeparator:"," envDefault:"localhost:6379"`

	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"5s"`
	MaxRetries      int           `env:"MAX_RETRIES" envDefault:"3"`
	MinRetryBackoff time.Duration `env:"MIN_RETRY_BACKOFF" envDefault:"100ms"`
	MaxRetryBackoff time.Duration `env:"MAX_RETRY_BACKOFF" envDefault:"2s"`
	PoolSize        int           `env:"POOL_SIZE" envDefault:"4"`
	PoolTimeout     time.Duration `env:"POOL_TIMEOUT" envDefault:"4s"`
	PrefixKey       string        `env:"PREFIX_KEY" envDefault:"simulator:"`
	// SnapshotTTL bounds how long run snapshots are kept. Zero keeps them forever.
	SnapshotTTL time.Duration `env:"SNAPSHOT_TTL" envDefault:"0s"`
}

// DefaultConfig returns a default configuration for the Redis client.
func DefaultConfig() *Config {
	return &Config{
		Mode:            Standalone,
		Addrs:           []string{"localhost:6379"},
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 2 * time.Second,
		PoolSize:        4,
		PoolTimeout:     4 * time.Second,
		PrefixKey:       "simulator:",
	}
}

// Key joins parts with ':' behind the configured prefix.
func (c *Config) Key(parts ...string) string {
	return c.PrefixKey + strings.Join(parts, ":")
}
