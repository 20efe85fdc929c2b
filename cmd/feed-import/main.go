package main

import (
	"context"
	"flag"
	"os"

	"github.com/muhammadchandra19/exchange-simulator/internal/bootstrap"
	feedv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/feed/v1"
	quoteInfra "github.com/muhammadchandra19/exchange-simulator/internal/infrastructure/questdb/quote"
	"github.com/muhammadchandra19/exchange-simulator/internal/usecase/feed"
	"github.com/muhammadchandra19/exchange-simulator/pkg/config"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
	"github.com/muhammadchandra19/exchange-simulator/pkg/questdb"
)

func main() {
	var (
		quotes      = flag.String("quotes", "", "Tardis quotes CSV to import (plain or .gz)")
		trades      = flag.String("trades", "", "Tardis trades CSV to import (optional)")
		symbol      = flag.String("symbol", "BTCUSDT", "Symbol to import")
		generate    = flag.Bool("generate", false, "Write synthetic CSV files instead of importing")
		out         = flag.String("out", ".", "Output directory for -generate")
		count       = flag.Int("count", 1000, "Number of quotes to generate")
		basePrice   = flag.Float64("base-price", 3945.5, "Start price of the generated quotes")
		priceSpread = flag.Float64("price-spread", 0.5, "Bid/ask spread of the generated quotes")
		seed        = flag.Int64("seed", 1, "Random seed of the generated quotes")
	)
	flag.Parse()

	cfg := &config.Config{}
	config.MustLoad(cfg)

	log, err := bootstrap.NewLogger(cfg.App)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()

	if *generate {
		g := generator{Symbol: *symbol, Count: *count, BasePrice: *basePrice, Spread: *priceSpread, Seed: *seed}
		quotesPath, tradesPath, err := g.WriteFiles(*out)
		if err != nil {
			log.Error(err, logger.NewField("action", "generate"))
			os.Exit(1)
		}
		log.Info("Synthetic market data written",
			logger.NewField("quotes", quotesPath),
			logger.NewField("trades", tradesPath),
		)
		return
	}

	if *quotes == "" {
		log.Warn("Nothing to import, pass -quotes or -generate")
		return
	}

	if err := importFiles(ctx, cfg.QuestDB, log, *quotes, *trades, *symbol); err != nil {
		log.Error(err, logger.NewField("action", "import"))
		os.Exit(1)
	}
}

func importFiles(ctx context.Context, cfg questdb.Config, log *logger.Logger, quotesPath, tradesPath, symbol string) error {
	client, err := questdb.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	source := feed.NewCSVSource(quotesPath, tradesPath)
	repo := quoteInfra.NewRepository(client)
	query := feedv1.Query{Symbol: symbol}

	quotes, err := source.LoadQuotes(ctx, query)
	if err != nil {
		return err
	}
	storedQuotes, err := repo.StoreQuotes(ctx, symbol, quotes)
	if err != nil {
		return err
	}

	prints, err := source.LoadPrints(ctx, query)
	if err != nil {
		return err
	}
	storedPrints, err := repo.StorePrints(ctx, symbol, prints)
	if err != nil {
		return err
	}

	log.Info("Market data imported",
		logger.NewField("symbol", symbol),
		logger.NewField("quotes", storedQuotes),
		logger.NewField("prints", storedPrints),
	)
	return nil
}
