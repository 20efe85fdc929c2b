package snapshotv1

import (
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
)

// Snapshot is the state of a venue at the end of a run.
type Snapshot struct {
	Venue         string              `json:"venue"`
	RunID         string              `json:"runID"`
	Clock         int64               `json:"clock"`
	OrderSequence uint64              `json:"orderSequence"`
	TradeSequence uint64              `json:"tradeSequence"`
	Balances      map[string]float64  `json:"balances"`
	Positions     map[string]float64  `json:"positions,omitempty"`
	Books         []OrderBookSnapshot `json:"books"`
}

// OrderBookSnapshot represents the resting orders of one market.
type OrderBookSnapshot struct {
	Symbol string      `json:"symbol"`
	Orders []BookOrder `json:"orders"`
}

// BookOrder represents a resting order. Price is in ticks.
type BookOrder struct {
	OrderID   uint64           `json:"orderID"`
	Side      orderbookv1.Side `json:"side"`
	Price     int64            `json:"price"`
	Amount    float64          `json:"amount"`
	Remaining float64          `json:"remaining"`
	Sequence  uint64           `json:"sequence"`
	EntryTime int64            `json:"entryTime"`
}

// OrderCount returns the number of resting orders over all books.
func (s *Snapshot) OrderCount() int {
	n := 0
	for _, b := range s.Books {
		n += len(b.Orders)
	}
	return n
}
