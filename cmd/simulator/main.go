package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/muhammadchandra19/exchange-simulator/internal/app/runner"
	"github.com/muhammadchandra19/exchange-simulator/internal/app/script"
	"github.com/muhammadchandra19/exchange-simulator/internal/bootstrap"
	feedv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/feed/v1"
	"github.com/muhammadchandra19/exchange-simulator/pkg/config"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
	"github.com/muhammadchandra19/exchange-simulator/pkg/util"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	if err := config.Load(cfg); err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	l, err := bootstrap.NewLogger(cfg.App)
	if err != nil {
		panic(err)
	}
	log = l
}

func main() {
	var (
		inspect = flag.Bool("inspect", false, "Print the stored snapshot of the venue instead of running")
		runs    = flag.Int64("runs", 0, "With -inspect, list the most recent run ids of the venue")
		runID   = flag.String("run-id", "", "With -inspect, the run to print (default: latest)")
	)
	flag.Parse()
	defer log.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *inspect {
		cfg.App.ExportSnapshot = true
		cfg.App.ExportHistory = false
		cfg.App.PublishTrades = false
	}

	b, err := bootstrap.Init(ctx, cfg, log)
	if err != nil {
		log.Error(err, logger.NewField("action", "bootstrap"))
		os.Exit(1)
	}
	defer b.Close(context.Background())

	if *inspect {
		if err := runInspect(ctx, b, *runs, *runID); err != nil {
			log.Error(err, logger.NewField("action", "inspect"))
			os.Exit(1)
		}
		return
	}

	if err := runSimulation(ctx, b); err != nil {
		log.Error(err, logger.NewField("action", "simulate"))
		os.Exit(1)
	}
}

func runSimulation(ctx context.Context, b *bootstrap.Bootstrap) error {
	scenario, err := script.Load(cfg.Sim.ScenarioPath)
	if err != nil {
		return err
	}

	engineOptions, err := bootstrap.EngineOptions(cfg.Sim)
	if err != nil {
		return err
	}

	r := runner.NewRunner(
		runner.Options{
			RunID:  cfg.App.RunID,
			Engine: engineOptions,
			Query: feedv1.Query{
				Symbol: cfg.Feed.Symbol,
				From:   cfg.Feed.From,
				To:     cfg.Feed.To,
			},
			IDSeed: cfg.Sim.LatencySeed,
		},
		scenario,
		runner.Dependencies{
			Source:    b.Usecase.Feed,
			History:   b.Usecase.History,
			Snapshots: b.Usecase.Snapshots,
			Publisher: b.Usecase.Publisher,
		},
		log,
	)

	_, result, err := r.Run(ctx)
	if result != nil {
		if encErr := printJSON(result); encErr != nil {
			return encErr
		}
	}
	return err
}

func runInspect(ctx context.Context, b *bootstrap.Bootstrap, runs int64, runID string) error {
	venue := cfg.Sim.Venue
	if runs > 0 {
		ids, err := b.Usecase.Snapshots.ListRuns(ctx, venue, runs)
		if err != nil {
			return err
		}
		return printJSON(ids)
	}

	if runID != "" {
		ctx = util.WithRunID(ctx, runID)
	}
	snapshot, err := b.Usecase.Snapshots.LoadStore(ctx, venue)
	if err != nil {
		return err
	}
	if snapshot == nil {
		log.WarnContext(ctx, "No snapshot stored", logger.NewField("venue", venue))
		return nil
	}
	return printJSON(snapshot)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
