package marketv1

import (
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
)

// Market is a tradable symbol with its base and quote currencies.
type Market struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Base   string `json:"base" yaml:"base"`
	Quote  string `json:"quote" yaml:"quote"`
}

// TOB is the top of book of a market. Prices are in ticks.
type TOB struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"timestamp"`
	BidQty    float64 `json:"bidQty"`
	BidPrice  int64   `json:"bidPrice"`
	AskQty    float64 `json:"askQty"`
	AskPrice  int64   `json:"askPrice"`
}

// HasBid reports whether the bid side is populated.
func (t TOB) HasBid() bool {
	return t.BidPrice > 0
}

// HasAsk reports whether the ask side is populated.
func (t TOB) HasAsk() bool {
	return t.AskPrice > 0
}

// Price returns the price a taker on side would trade at, the opposite touch.
func (t TOB) Price(side orderbookv1.Side) (int64, bool) {
	if side == orderbookv1.Buy {
		return t.AskPrice, t.HasAsk()
	}
	return t.BidPrice, t.HasBid()
}

// Quote is a top-of-book observation with display prices, as loaded from a
// feed or returned to strategies.
type Quote struct {
	Timestamp int64   `json:"timestamp"`
	BidQty    float64 `json:"bidQty"`
	BidPrice  float64 `json:"bidPrice"`
	AskQty    float64 `json:"askQty"`
	AskPrice  float64 `json:"askPrice"`
}

// Mid returns the display mid price.
func (q Quote) Mid() float64 {
	return (q.BidPrice + q.AskPrice) / 2
}

// Print is a public trade observed on the venue.
type Print struct {
	Timestamp int64            `json:"timestamp"`
	Side      orderbookv1.Side `json:"side"`
	Price     float64          `json:"price"`
	Amount    float64          `json:"amount"`
}
