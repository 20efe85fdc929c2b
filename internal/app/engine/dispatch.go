package engine

import (
	eventv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/event/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-simulator/internal/usecase/orderbook"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
)

func (e *Engine) dispatch(ts int64, ev eventv1.Event) error {
	switch ev := ev.(type) {
	case eventv1.MarketData:
		return e.onMarketData(ts, ev)
	case eventv1.NewOrder:
		return e.onNewOrder(ts, ev)
	case eventv1.ModifyOrder:
		return e.onModifyOrder(ts, ev)
	case eventv1.CancelOrder:
		return e.onCancelOrder(ts, ev)
	case eventv1.PublicTrade:
		return e.onPublicTrade(ts, ev)
	default:
		return orderbookv1.ErrUnknownEventKind.Errorf("%T", ev)
	}
}

func (e *Engine) book(symbol string) (*orderbook.Orderbook, error) {
	book, ok := e.books[symbol]
	if !ok {
		return nil, orderbookv1.ErrUnknownMarket.Errorf("%s", symbol)
	}
	return book, nil
}

func (e *Engine) onMarketData(ts int64, ev eventv1.MarketData) error {
	if _, err := e.book(ev.TOB.Symbol); err != nil {
		return err
	}
	tob := ev.TOB
	tob.Timestamp = ts
	e.tobs[tob.Symbol] = tob
	return nil
}

func (e *Engine) onNewOrder(ts int64, ev eventv1.NewOrder) error {
	order := ev.Order
	book, err := e.book(order.Symbol)
	if err != nil {
		order.Reject(ts)
		return err
	}
	order.Arrive(ts)
	market := e.markets[order.Symbol]

	if order.Taker {
		tob, ok := e.tobs[order.Symbol]
		price, hasPrice := tob.Price(order.Side)
		if !ok || !hasPrice {
			order.Reject(ts)
			return orderbookv1.ErrNoMarketData.Errorf("order %d: no opposite price for %s", order.ID, order.Symbol)
		}

		if !e.ledger.CanAfford(market, order.Side, order.Remaining, e.ticker.FromTicks(price)) {
			order.Reject(ts)
			return orderbookv1.ErrInsufficientBalance.Errorf("order %d: %s %g %s at %g", order.ID, order.Side, order.Remaining, order.Symbol, e.ticker.FromTicks(price))
		}

		filled := order.Fill(order.Remaining, ts)
		e.settle(order, filled, price, true, ts)
		return nil
	}

	if !e.ledger.CanAfford(market, order.Side, order.Remaining, e.ticker.FromTicks(order.LimitPrice)) {
		order.Reject(ts)
		return orderbookv1.ErrInsufficientBalance.Errorf("order %d: %s %g %s at %g", order.ID, order.Side, order.Remaining, order.Symbol, e.ticker.FromTicks(order.LimitPrice))
	}
	if e.crossesOwnBook(book, order.Side, order.LimitPrice) {
		order.Reject(ts)
		return orderbookv1.ErrCrossesOwnOrder.Errorf("order %d: %s at %d", order.ID, order.Side, order.LimitPrice)
	}

	return book.AddRestingOrder(order)
}

// crossesOwnBook reports whether a resting order on side at price would lock
// or cross the opposite side of book and still rest after reconciliation.
// An order that is marketable against the top of book is filled in full by
// reconcile in the same step, so it never rests.
func (e *Engine) crossesOwnBook(book *orderbook.Orderbook, side orderbookv1.Side, price int64) bool {
	tob := e.tobs[book.Symbol]
	if side == orderbookv1.Buy {
		ask, ok := book.BestAsk()
		if !ok || price < ask {
			return false
		}
		return !tob.HasAsk() || price < tob.AskPrice
	}
	bid, ok := book.BestBid()
	if !ok || price > bid {
		return false
	}
	return !tob.HasBid() || price > tob.BidPrice
}

// onModifyOrder changes a resting order in place. A repriced order keeps its
// admission sequence and so its seniority.
func (e *Engine) onModifyOrder(ts int64, ev eventv1.ModifyOrder) error {
	book, err := e.book(ev.Symbol)
	if err != nil {
		return err
	}
	order, ok := book.Get(ev.OrderID)
	if !ok || order.Side != ev.Side {
		return orderbookv1.ErrOrderNotFound.Errorf("modify %d", ev.OrderID)
	}

	if ev.Price != nil && e.crossesOwnBook(book, order.Side, *ev.Price) {
		return orderbookv1.ErrCrossesOwnOrder.Errorf("modify %d: %s at %d", ev.OrderID, order.Side, *ev.Price)
	}
	if ev.Price != nil {
		if err := book.Reprice(ev.OrderID, *ev.Price); err != nil {
			return err
		}
	}
	if ev.Amount != nil {
		filled := order.Filled()
		if err := book.Resize(ev.OrderID, *ev.Amount); err != nil {
			return err
		}
		order.Amount = filled + *ev.Amount
	}
	order.EventTime = ts
	return nil
}

func (e *Engine) onCancelOrder(ts int64, ev eventv1.CancelOrder) error {
	book, err := e.book(ev.Symbol)
	if err != nil {
		return err
	}
	key, ok := book.LevelOf(ev.OrderID)
	if !ok || key.Side != ev.Side {
		return orderbookv1.ErrOrderNotFound.Errorf("cancel %d", ev.OrderID)
	}

	order, err := book.RemoveOrder(ev.OrderID)
	if err != nil {
		return err
	}
	order.Cancel(ts)
	return nil
}

// onPublicTrade fills at most the oldest order of the best opposite level
// when the print trades through its price. Deeper levels are not walked.
func (e *Engine) onPublicTrade(ts int64, ev eventv1.PublicTrade) error {
	book, err := e.book(ev.Symbol)
	if err != nil {
		return err
	}

	var level *orderbookv1.Level
	if ev.Side == orderbookv1.Buy {
		if level = book.BestAskLevel(); level == nil || level.Price > ev.Price {
			return nil
		}
	} else {
		if level = book.BestBidLevel(); level == nil || level.Price < ev.Price {
			return nil
		}
	}

	order := level.Head()
	price := level.Price
	qty := ev.Amount
	if qty > order.Remaining {
		qty = order.Remaining
	}
	if qty <= 0 {
		return nil
	}

	filled, err := book.ReduceOrder(order.ID, qty, ts)
	if err != nil {
		return err
	}
	e.settle(order, filled, price, false, ts)
	return nil
}

// reconcile fills every resting order of symbol that the current top of
// book has made marketable, at the top-of-book price. An order that arrived
// at ts counts as taker since it never rested.
func (e *Engine) reconcile(symbol string, ts int64) error {
	book, ok := e.books[symbol]
	if !ok || book.Len() == 0 {
		return nil
	}
	tob, ok := e.tobs[symbol]
	if !ok {
		return nil
	}

	for {
		matched := false

		if tob.HasAsk() {
			if level := book.BestBidLevel(); level != nil && level.Price >= tob.AskPrice {
				if err := e.fillResting(book, level.Head(), tob.AskPrice, ts); err != nil {
					return err
				}
				matched = true
			}
		}

		if tob.HasBid() {
			if level := book.BestAskLevel(); level != nil && level.Price <= tob.BidPrice {
				if err := e.fillResting(book, level.Head(), tob.BidPrice, ts); err != nil {
					return err
				}
				matched = true
			}
		}

		if !matched {
			return nil
		}
	}
}

func (e *Engine) fillResting(book *orderbook.Orderbook, order *orderbookv1.Order, price int64, ts int64) error {
	taker := order.ArrivalTime == ts
	filled, err := book.ReduceOrder(order.ID, order.Remaining, ts)
	if err != nil {
		return err
	}
	e.settle(order, filled, price, taker, ts)
	return nil
}

// settle books a fill of qty at price ticks and records the trade.
func (e *Engine) settle(order *orderbookv1.Order, qty float64, price int64, taker bool, ts int64) *orderbookv1.Trade {
	display := e.ticker.FromTicks(price)
	fee := e.ledger.Settle(e.markets[order.Symbol], order.Side, qty, display, taker)

	e.tradeSeq++
	trade := &orderbookv1.Trade{
		ID:        e.tradeSeq,
		OrderID:   order.ID,
		Symbol:    order.Symbol,
		Side:      order.Side,
		Taker:     taker,
		Amount:    qty,
		Price:     display,
		Fee:       fee,
		EntryTime: order.EntryTime,
		EventTime: ts,
	}
	e.trades = append(e.trades, trade)

	e.logger.Debug("Trade executed",
		logger.NewField("tradeID", trade.ID),
		logger.NewField("orderID", trade.OrderID),
		logger.NewField("symbol", trade.Symbol),
		logger.NewField("side", trade.Side.String()),
		logger.NewField("liquidity", trade.Liquidity()),
		logger.NewField("price", trade.Price),
		logger.NewField("size", trade.Amount),
		logger.NewField("fee", trade.Fee),
		logger.NewField("orderStatus", order.Status.String()),
	)
	return trade
}
