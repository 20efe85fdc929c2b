// Package feed loads recorded market data into a venue before a run.
package feed

import (
	"context"

	feedv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/feed/v1"
	marketv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/market/v1"
	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
)

// Target receives the loaded market data of one symbol.
type Target interface {
	LoadTOB(symbol string, quotes []marketv1.Quote) error
	LoadTrades(symbol string, prints []marketv1.Print) error
}

// Loader moves market data from a Source into a Target.
type Loader struct {
	source feedv1.Source
	logger *logger.Logger
}

// NewLoader creates a new Loader.
func NewLoader(source feedv1.Source, log *logger.Logger) *Loader {
	return &Loader{
		source: source,
		logger: log,
	}
}

// Load reads the quotes and prints selected by query and loads them into
// target under the query symbol.
func (l *Loader) Load(ctx context.Context, target Target, query feedv1.Query) error {
	quotes, err := l.source.LoadQuotes(ctx, query)
	if err != nil {
		return errors.NewTracer("load quotes of " + query.Symbol).Wrap(err)
	}
	if err := checkSorted(len(quotes), func(i int) int64 { return quotes[i].Timestamp }); err != nil {
		return errors.NewTracer("load quotes of " + query.Symbol).Wrap(err)
	}

	prints, err := l.source.LoadPrints(ctx, query)
	if err != nil {
		return errors.NewTracer("load prints of " + query.Symbol).Wrap(err)
	}
	if err := checkSorted(len(prints), func(i int) int64 { return prints[i].Timestamp }); err != nil {
		return errors.NewTracer("load prints of " + query.Symbol).Wrap(err)
	}

	if err := target.LoadTOB(query.Symbol, quotes); err != nil {
		return err
	}
	if err := target.LoadTrades(query.Symbol, prints); err != nil {
		return err
	}

	l.logger.InfoContext(ctx, "Market data loaded",
		logger.NewField("symbol", query.Symbol),
		logger.NewField("quotes", len(quotes)),
		logger.NewField("prints", len(prints)),
	)
	return nil
}

func checkSorted(n int, ts func(i int) int64) error {
	for i := 1; i < n; i++ {
		if ts(i) < ts(i-1) {
			return feedv1.ErrUnsorted.Errorf("record %d at %d after %d", i, ts(i), ts(i-1))
		}
	}
	return nil
}
