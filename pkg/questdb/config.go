package questdb

import (
	"fmt"
	"time"
)

// Config is the QuestDB client configuration. QuestDB is reached over its
// PostgreSQL wire endpoint.
type Config struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"8812"`
	Database string `env:"DATABASE" envDefault:"qdb"`
	Username string `env:"USERNAME" envDefault:"admin"`
	Password string `env:"PASSWORD" envDefault:"quest"`

	// Connection pool settings
	MaxConns        int32         `env:"MAX_CONNS" envDefault:"4"`
	MinConns        int32         `env:"MIN_CONNS" envDefault:"1"`
	MaxConnLifetime time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"30m"`

	// Connection timeout settings
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`

	// BatchSize caps the number of rows sent per CopyFrom call.
	BatchSize int `env:"BATCH_SIZE" envDefault:"10000"`
}

// ConnString builds the postgres connection string for the config.
func (c Config) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}
