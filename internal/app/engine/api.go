package engine

import (
	eventv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/event/v1"
	marketv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/market/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-simulator/internal/usecase/orderbook"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
	"github.com/muhammadchandra19/exchange-simulator/pkg/util"
)

// Modification changes a resting order. Nil fields are left unchanged.
// Amount is the new remaining quantity.
type Modification struct {
	Price  *float64
	Amount *float64
}

// AddMarket registers symbol traded as base against quote. Registering the
// same market twice is a no-op.
func (e *Engine) AddMarket(symbol, base, quote string) error {
	if symbol == "" || base == "" || quote == "" {
		return orderbookv1.ErrUnknownMarket.Errorf("symbol %q base %q quote %q", symbol, base, quote)
	}

	market := marketv1.Market{Symbol: symbol, Base: base, Quote: quote}
	if existing, ok := e.markets[symbol]; ok {
		if existing != market {
			return orderbookv1.ErrUnknownMarket.Errorf("%s already registered as %s/%s", symbol, existing.Base, existing.Quote)
		}
		return nil
	}

	e.markets[symbol] = market
	e.symbols = append(e.symbols, symbol)
	e.books[symbol] = orderbook.NewOrderbook(symbol)
	e.ledger.Track(base)
	e.ledger.Track(quote)

	e.logger.Debug("Market added",
		logger.NewField("symbol", symbol),
		logger.NewField("base", base),
		logger.NewField("quote", quote),
	)
	return nil
}

// AddBalance deposits amount of currency.
func (e *Engine) AddBalance(currency string, amount float64) {
	e.ledger.Deposit(currency, amount)
}

// LoadTOB loads top-of-book updates of symbol. When the market has no top of
// book yet, the first update becomes the current one and the rest are
// scheduled at their timestamps.
func (e *Engine) LoadTOB(symbol string, quotes []marketv1.Quote) error {
	if err := e.checkLoad(symbol); err != nil {
		return err
	}
	if len(quotes) == 0 {
		return nil
	}

	tobs := make([]marketv1.TOB, 0, len(quotes))
	for _, q := range quotes {
		tob, err := e.toTOB(symbol, q)
		if err != nil {
			return err
		}
		tobs = append(tobs, tob)
	}

	if _, ok := e.initial[symbol]; !ok {
		e.initial[symbol] = tobs[0]
		e.tobs[symbol] = tobs[0]
		tobs = tobs[1:]
	}

	for _, tob := range tobs {
		e.scheduled.Schedule(eventv1.MarketData{TOB: tob}, tob.Timestamp)
	}

	e.logger.Debug("Top of book loaded",
		logger.NewField("symbol", symbol),
		logger.NewField("updates", len(tobs)),
	)
	return nil
}

// LoadTrades loads public trades of symbol.
func (e *Engine) LoadTrades(symbol string, prints []marketv1.Print) error {
	if err := e.checkLoad(symbol); err != nil {
		return err
	}

	trades := make([]eventv1.PublicTrade, 0, len(prints))
	for _, p := range prints {
		price, err := e.ticker.ToTicks(p.Price)
		if err != nil {
			return orderbookv1.ErrInvalidPrice.Errorf("print at %d: %v", p.Timestamp, err)
		}
		trades = append(trades, eventv1.PublicTrade{
			Symbol:    symbol,
			Side:      p.Side,
			Price:     price,
			Amount:    p.Amount,
			Timestamp: p.Timestamp,
		})
	}
	for _, trade := range trades {
		e.scheduled.Schedule(trade, trade.Timestamp)
	}

	e.logger.Debug("Public trades loaded",
		logger.NewField("symbol", symbol),
		logger.NewField("prints", len(prints)),
	)
	return nil
}

func (e *Engine) checkLoad(symbol string) error {
	if _, ok := e.markets[symbol]; !ok {
		return orderbookv1.ErrUnknownMarket.Errorf("%s", symbol)
	}
	if e.prepared {
		return orderbookv1.ErrSimulationStarted.Errorf("%s", symbol)
	}
	return nil
}

func (e *Engine) toTOB(symbol string, q marketv1.Quote) (marketv1.TOB, error) {
	bid, err := e.ticker.ToTicks(q.BidPrice)
	if err != nil {
		return marketv1.TOB{}, orderbookv1.ErrInvalidPrice.Errorf("quote at %d bid: %v", q.Timestamp, err)
	}
	ask, err := e.ticker.ToTicks(q.AskPrice)
	if err != nil {
		return marketv1.TOB{}, orderbookv1.ErrInvalidPrice.Errorf("quote at %d ask: %v", q.Timestamp, err)
	}
	return marketv1.TOB{
		Symbol:    symbol,
		Timestamp: q.Timestamp,
		BidQty:    q.BidQty,
		BidPrice:  bid,
		AskQty:    q.AskQty,
		AskPrice:  ask,
	}, nil
}

// MarketOrder schedules a taker order decided at ts. It reaches the venue
// after the latency of the model.
func (e *Engine) MarketOrder(symbol string, amount float64, side orderbookv1.Side, ts int64) (*orderbookv1.Order, error) {
	if err := e.checkOrder(symbol, amount); err != nil {
		return nil, err
	}

	e.orderSeq++
	order := orderbookv1.NewMarketOrder(e.orderSeq, symbol, side, amount, ts)
	e.submit(order, ts)
	return order, nil
}

// LimitOrder schedules a maker order at price decided at ts.
func (e *Engine) LimitOrder(symbol string, amount, price float64, side orderbookv1.Side, ts int64) (*orderbookv1.Order, error) {
	if err := e.checkOrder(symbol, amount); err != nil {
		return nil, err
	}
	ticks, err := e.ticker.ToTicks(price)
	if err != nil {
		return nil, orderbookv1.ErrInvalidPrice.Errorf("%v", err)
	}
	if price <= 0 || ticks <= 0 {
		return nil, orderbookv1.ErrInvalidPrice.Errorf("%g with tick %s", price, e.ticker.TickSize())
	}

	e.orderSeq++
	order := orderbookv1.NewLimitOrder(e.orderSeq, symbol, side, amount, ticks, ts)
	e.submit(order, ts)
	return order, nil
}

func (e *Engine) checkOrder(symbol string, amount float64) error {
	if _, ok := e.markets[symbol]; !ok {
		return orderbookv1.ErrUnknownMarket.Errorf("%s", symbol)
	}
	if amount <= 0 {
		return orderbookv1.ErrInvalidAmount.Errorf("%g", amount)
	}
	return nil
}

func (e *Engine) submit(order *orderbookv1.Order, ts int64) {
	e.orders = append(e.orders, order)
	e.ordersByID[order.ID] = order

	at := e.schedule(eventv1.NewOrder{Order: order}, ts)

	e.logger.Debug("Order scheduled",
		logger.NewField("orderID", order.ID),
		logger.NewField("symbol", order.Symbol),
		logger.NewField("side", order.Side.String()),
		logger.NewField("taker", order.Taker),
		logger.NewField("amount", order.Amount),
		logger.NewField("price", order.LimitPrice),
		logger.NewField("decidedAt", ts),
		logger.NewField("deliverAt", at),
	)
}

// schedule delivers ev after latency. Deliveries never land behind the clock.
func (e *Engine) schedule(ev eventv1.Event, ts int64) int64 {
	e.prepare()

	at := util.AddLatency(ts, e.latency.Estimate())
	if at < e.clock {
		at = e.clock
	}
	e.live.Schedule(ev, at)
	return at
}

// decisionTime is the time a cancel or modify of symbol is decided: the
// last top-of-book update, or the clock when there is none.
func (e *Engine) decisionTime(symbol string) int64 {
	if tob, ok := e.tobs[symbol]; ok && tob.Timestamp > 0 {
		return tob.Timestamp
	}
	return e.clock
}

// CancelOrder schedules the cancellation of order. Whether the order still
// rests is only known when the cancel reaches the venue.
func (e *Engine) CancelOrder(order *orderbookv1.Order) error {
	if order == nil {
		return orderbookv1.ErrNilOrder
	}
	if _, ok := e.markets[order.Symbol]; !ok {
		return orderbookv1.ErrUnknownMarket.Errorf("%s", order.Symbol)
	}

	e.schedule(eventv1.CancelOrder{
		OrderID: order.ID,
		Symbol:  order.Symbol,
		Side:    order.Side,
	}, e.decisionTime(order.Symbol))
	return nil
}

// ModifyOrder schedules a change of price and/or remaining amount of order.
func (e *Engine) ModifyOrder(order *orderbookv1.Order, mod Modification) error {
	if order == nil {
		return orderbookv1.ErrNilOrder
	}
	if _, ok := e.markets[order.Symbol]; !ok {
		return orderbookv1.ErrUnknownMarket.Errorf("%s", order.Symbol)
	}

	ev := eventv1.ModifyOrder{
		OrderID: order.ID,
		Symbol:  order.Symbol,
		Side:    order.Side,
	}
	if mod.Price != nil {
		ticks, err := e.ticker.ToTicks(*mod.Price)
		if err != nil {
			return orderbookv1.ErrInvalidPrice.Errorf("%v", err)
		}
		if *mod.Price <= 0 || ticks <= 0 {
			return orderbookv1.ErrInvalidPrice.Errorf("%g", *mod.Price)
		}
		ev.Price = &ticks
	}
	if mod.Amount != nil {
		if *mod.Amount <= 0 {
			return orderbookv1.ErrInvalidAmount.Errorf("%g", *mod.Amount)
		}
		amount := *mod.Amount
		ev.Amount = &amount
	}

	e.schedule(ev, e.decisionTime(order.Symbol))
	return nil
}

// FetchTOB returns the current top of book of symbol as the strategy sees
// it: the timestamp is delayed by one latency sample.
func (e *Engine) FetchTOB(symbol string) (marketv1.Quote, error) {
	if _, ok := e.markets[symbol]; !ok {
		return marketv1.Quote{}, orderbookv1.ErrUnknownMarket.Errorf("%s", symbol)
	}
	tob, ok := e.tobs[symbol]
	if !ok {
		return marketv1.Quote{}, orderbookv1.ErrNoMarketData.Errorf("%s", symbol)
	}

	return marketv1.Quote{
		Timestamp: util.AddLatency(tob.Timestamp, e.latency.Estimate()),
		BidQty:    tob.BidQty,
		BidPrice:  e.ticker.FromTicks(tob.BidPrice),
		AskQty:    tob.AskQty,
		AskPrice:  e.ticker.FromTicks(tob.AskPrice),
	}, nil
}
