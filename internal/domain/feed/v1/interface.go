package feedv1

import (
	"context"

	marketv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/market/v1"
)

// Query selects the market data of one symbol. Zero bounds are open.
// Timestamps are Unix nanoseconds, From inclusive and To exclusive.
type Query struct {
	Symbol string
	From   int64
	To     int64
}

// Contains reports whether ts falls inside the query window.
func (q Query) Contains(ts int64) bool {
	if q.From != 0 && ts < q.From {
		return false
	}
	if q.To != 0 && ts >= q.To {
		return false
	}
	return true
}

// Source loads market data ahead of a run. Results are sorted by timestamp.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=feedv1_mock
type Source interface {
	LoadQuotes(ctx context.Context, query Query) ([]marketv1.Quote, error)
	LoadPrints(ctx context.Context, query Query) ([]marketv1.Print, error)
}
