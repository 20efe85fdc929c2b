package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/muhammadchandra19/exchange-simulator/internal/bootstrap"
	"github.com/muhammadchandra19/exchange-simulator/internal/infrastructure/questdb/migrations"
	"github.com/muhammadchandra19/exchange-simulator/pkg/config"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
	"github.com/muhammadchandra19/exchange-simulator/pkg/migration"
	"github.com/muhammadchandra19/exchange-simulator/pkg/questdb"
)

func main() {
	var (
		direction = flag.String("direction", "up", "Migration direction: up or down")
		steps     = flag.Int("steps", 0, "Number of steps to migrate (0 = all)")
	)
	flag.Parse()

	cfg := &config.Config{}
	config.MustLoad(cfg)

	log, err := bootstrap.NewLogger(cfg.App)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	if err := migrate(context.Background(), cfg.QuestDB, log, *direction, *steps); err != nil {
		log.Error(err, logger.NewField("direction", *direction))
		os.Exit(1)
	}
}

func migrate(ctx context.Context, cfg questdb.Config, log *logger.Logger, direction string, steps int) error {
	client, err := questdb.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	runner := migration.NewRunner(client, migrations.FS, log)
	if err := runner.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	var applied []string
	switch direction {
	case "up":
		applied, err = runner.MigrateUp(ctx, steps)
	case "down":
		applied, err = runner.MigrateDown(ctx, steps)
	default:
		return fmt.Errorf("invalid direction %q, use 'up' or 'down'", direction)
	}
	if err != nil {
		return err
	}

	log.Info("Migration completed",
		logger.NewField("direction", direction),
		logger.NewField("migrations", applied),
	)
	return nil
}
