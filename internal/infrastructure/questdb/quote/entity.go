package quote

import (
	"time"

	marketv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/market/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-simulator/pkg/util"
)

// Quote is a row of the quotes table.
type Quote struct {
	Timestamp time.Time
	Symbol    string
	BidQty    float64
	BidPrice  float64
	AskQty    float64
	AskPrice  float64
}

// Print is a row of the prints table.
type Print struct {
	Timestamp time.Time
	Symbol    string
	Side      string
	Price     float64
	Amount    float64
}

func (q *Quote) toMarket() marketv1.Quote {
	return marketv1.Quote{
		Timestamp: util.TimeToNanos(q.Timestamp),
		BidQty:    q.BidQty,
		BidPrice:  q.BidPrice,
		AskQty:    q.AskQty,
		AskPrice:  q.AskPrice,
	}
}

func (p *Print) toMarket() (marketv1.Print, bool) {
	side, ok := orderbookv1.ParseSide(p.Side)
	if !ok {
		return marketv1.Print{}, false
	}
	return marketv1.Print{
		Timestamp: util.TimeToNanos(p.Timestamp),
		Side:      side,
		Price:     p.Price,
		Amount:    p.Amount,
	}, true
}
