package bootstrap

import (
	"github.com/muhammadchandra19/exchange-simulator/internal/app/engine"
	"github.com/muhammadchandra19/exchange-simulator/internal/usecase/latency"
	"github.com/muhammadchandra19/exchange-simulator/internal/usecase/ledger"
	"github.com/muhammadchandra19/exchange-simulator/pkg/config"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
)

// EngineOptions maps the simulation settings onto engine options.
func EngineOptions(cfg config.SimConfig) (*engine.Options, error) {
	mode, err := ledger.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	options := engine.DefaultEngineOptions()
	options.Venue = cfg.Venue
	options.Mode = mode
	options.TakerFeeBps = cfg.TakerFeeBps
	options.MakerFeeBps = cfg.MakerFeeBps
	options.TickSize = cfg.TickSize
	options.Latency = latency.New(cfg.LatencyKind, cfg.LatencyMean, cfg.LatencySigma, cfg.LatencySeed)
	return options, nil
}

// NewLogger builds the process logger at the configured level.
func NewLogger(cfg config.AppConfig) (*logger.Logger, error) {
	return logger.NewLogger(
		logger.WithLoggingLevel(logger.Level(cfg.LogLevel)),
	)
}
