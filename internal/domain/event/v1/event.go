// Package eventv1 defines the events that move a simulated venue forward.
// Event is a closed set: only the types in this package implement it.
package eventv1

import (
	marketv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/market/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
)

// Kind identifies an event variant.
type Kind int

const (
	// KindMarketData replaces the top of book.
	KindMarketData Kind = iota + 1
	// KindNewOrder delivers a trader order to the venue.
	KindNewOrder
	// KindModifyOrder changes price or amount of a resting order.
	KindModifyOrder
	// KindCancelOrder removes a resting order.
	KindCancelOrder
	// KindPublicTrade is a trade printed by other participants.
	KindPublicTrade
)

func (k Kind) String() string {
	switch k {
	case KindMarketData:
		return "market_data"
	case KindNewOrder:
		return "new_order"
	case KindModifyOrder:
		return "modify_order"
	case KindCancelOrder:
		return "cancel_order"
	case KindPublicTrade:
		return "public_trade"
	}
	return "unknown"
}

// Event is anything that can be scheduled on a timeline.
type Event interface {
	Kind() Kind
	// Market returns the symbol the event applies to.
	Market() string
	sealed()
}

// MarketData carries a new top of book.
type MarketData struct {
	TOB marketv1.TOB
}

// NewOrder carries an order to the venue.
type NewOrder struct {
	Order *orderbookv1.Order
}

// ModifyOrder changes a resting order. A nil field is left unchanged.
// Amount is the new remaining quantity.
type ModifyOrder struct {
	OrderID uint64
	Symbol  string
	Side    orderbookv1.Side
	Price   *int64
	Amount  *float64
}

// CancelOrder removes a resting order.
type CancelOrder struct {
	OrderID uint64
	Symbol  string
	Side    orderbookv1.Side
}

// PublicTrade is a print by other participants. Side is the aggressor side.
type PublicTrade struct {
	Symbol    string
	Side      orderbookv1.Side
	Price     int64
	Amount    float64
	Timestamp int64
}

func (MarketData) Kind() Kind  { return KindMarketData }
func (NewOrder) Kind() Kind    { return KindNewOrder }
func (ModifyOrder) Kind() Kind { return KindModifyOrder }
func (CancelOrder) Kind() Kind { return KindCancelOrder }
func (PublicTrade) Kind() Kind { return KindPublicTrade }

func (e MarketData) Market() string  { return e.TOB.Symbol }
func (e NewOrder) Market() string    { return e.Order.Symbol }
func (e ModifyOrder) Market() string { return e.Symbol }
func (e CancelOrder) Market() string { return e.Symbol }
func (e PublicTrade) Market() string { return e.Symbol }

func (MarketData) sealed()  {}
func (NewOrder) sealed()    {}
func (ModifyOrder) sealed() {}
func (CancelOrder) sealed() {}
func (PublicTrade) sealed() {}
