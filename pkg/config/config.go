package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
	"github.com/muhammadchandra19/exchange-simulator/pkg/questdb"
	"github.com/muhammadchandra19/exchange-simulator/pkg/redis"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and an optional .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return nil
}

// Config holds the configuration of the simulator binaries.
type Config struct {
	App     AppConfig      `envPrefix:"APP_"`
	Sim     SimConfig      `envPrefix:"SIM_"`
	Feed    FeedConfig     `envPrefix:"FEED_"`
	QuestDB questdb.Config `envPrefix:"QUESTDB_"`
	Redis   redis.Config   `envPrefix:"REDIS_"`
	Kafka   KafkaConfig    `envPrefix:"KAFKA_"`
}

// AppConfig holds process level settings.
type AppConfig struct {
	Name     string `env:"NAME" envDefault:"exchange-simulator"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	RunID    string `env:"RUN_ID"`
	// Export switches the post-run exports on or off.
	ExportHistory  bool `env:"EXPORT_HISTORY" envDefault:"false"`
	ExportSnapshot bool `env:"EXPORT_SNAPSHOT" envDefault:"false"`
	PublishTrades  bool `env:"PUBLISH_TRADES" envDefault:"false"`
}

// SimConfig holds the venue and engine parameters.
type SimConfig struct {
	Venue        string  `env:"VENUE" envDefault:"sim"`
	Mode         string  `env:"MODE" envDefault:"spot"`
	TakerFeeBps  float64 `env:"TAKER_FEE_BPS" envDefault:"0"`
	MakerFeeBps  float64 `env:"MAKER_FEE_BPS" envDefault:"0"`
	TickSize     string  `env:"TICK_SIZE" envDefault:"0.01"`
	ScenarioPath string  `env:"SCENARIO_PATH" envDefault:"scenario.yaml"`

	LatencyKind  string        `env:"LATENCY_KIND" envDefault:"constant"`
	LatencyMean  time.Duration `env:"LATENCY_MEAN" envDefault:"0s"`
	LatencySigma float64       `env:"LATENCY_SIGMA" envDefault:"0.1"`
	LatencySeed  int64         `env:"LATENCY_SEED" envDefault:"1"`
}

// FeedConfig selects where market data is loaded from before a run.
type FeedConfig struct {
	Source     string `env:"SOURCE" envDefault:"csv"`
	QuotesPath string `env:"QUOTES_PATH"`
	TradesPath string `env:"TRADES_PATH"`
	Symbol     string `env:"SYMBOL"`
	// From and To bound the QuestDB query window, Unix nanoseconds. Zero means unbounded.
	From int64 `env:"FROM" envDefault:"0"`
	To   int64 `env:"TO" envDefault:"0"`
}

// KafkaConfig holds the configuration for the simulated fill publisher.
type KafkaConfig struct {
	Brokers      []string      `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic        string        `env:"TOPIC" envDefault:"simulated-trades"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
}

const (
	// FeedSourceCSV reads Tardis style CSV files.
	FeedSourceCSV = "csv"
	// FeedSourceQuestDB reads quotes and prints tables from QuestDB.
	FeedSourceQuestDB = "questdb"

	// ModeSpot settles trades against base and quote balances.
	ModeSpot = "spot"
	// ModeDerivative settles trades against quote balance and a signed position.
	ModeDerivative = "derivative"

	// LatencyConstant always yields LatencyMean.
	LatencyConstant = "constant"
	// LatencyLogNormal draws LatencyMean scaled by a log-normal factor.
	LatencyLogNormal = "lognormal"
)

// Validate checks the enumerated settings and collects every problem found.
func (c *Config) Validate() error {
	base := errors.NewBaseError()
	code := string(errors.GeneralValidationError)

	switch c.Sim.Mode {
	case ModeSpot, ModeDerivative:
	default:
		base.AddErrorDetails(errors.NewErrorDetails("mode must be spot or derivative", code, "SIM_MODE"))
	}

	switch c.Sim.LatencyKind {
	case LatencyConstant, LatencyLogNormal:
	default:
		base.AddErrorDetails(errors.NewErrorDetails("latency kind must be constant or lognormal", code, "SIM_LATENCY_KIND"))
	}

	if c.Sim.LatencyMean < 0 {
		base.AddErrorDetails(errors.NewErrorDetails("latency mean must not be negative", code, "SIM_LATENCY_MEAN"))
	}

	if c.Sim.TakerFeeBps < 0 || c.Sim.MakerFeeBps < 0 {
		base.AddErrorDetails(errors.NewErrorDetails("fees must not be negative", code, "SIM_FEE_BPS"))
	}

	switch c.Feed.Source {
	case FeedSourceCSV:
		if c.Feed.QuotesPath == "" {
			base.AddErrorDetails(errors.NewErrorDetails("quotes path is required for csv feeds", code, "FEED_QUOTES_PATH"))
		}
	case FeedSourceQuestDB:
	default:
		base.AddErrorDetails(errors.NewErrorDetails("feed source must be csv or questdb", code, "FEED_SOURCE"))
	}

	if c.Feed.Symbol == "" {
		base.AddErrorDetails(errors.NewErrorDetails("feed symbol is required", code, "FEED_SYMBOL"))
	}

	if base.HasDetails() {
		return base
	}
	return nil
}
