// Package engine simulates a trading venue. It replays market data and the
// trader's orders on one timeline, keeps the trader's resting orders in
// per-market books and settles fills against a balance ledger.
package engine

import (
	"context"

	eventv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/event/v1"
	historyv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/history/v1"
	latencyv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/latency/v1"
	marketv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/market/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/exchange-simulator/internal/usecase/ledger"
	"github.com/muhammadchandra19/exchange-simulator/internal/usecase/orderbook"
	"github.com/muhammadchandra19/exchange-simulator/internal/usecase/timeline"
	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
	"github.com/muhammadchandra19/exchange-simulator/pkg/pricing"
	"github.com/muhammadchandra19/exchange-simulator/pkg/util"
)

// Strategy is called once before every step. It may place, cancel and
// modify orders; those calls only schedule events.
type Strategy interface {
	RunStrategy(ctx context.Context) error
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context) error

// RunStrategy calls f.
func (f StrategyFunc) RunStrategy(ctx context.Context) error {
	return f(ctx)
}

// Rejection is a non-fatal error raised while an event was processed.
type Rejection struct {
	Timestamp int64            `json:"timestamp"`
	Kind      eventv1.Kind     `json:"kind"`
	Symbol    string           `json:"symbol"`
	OrderID   uint64           `json:"orderID"`
	Code      errors.ErrorCode `json:"code"`
	Err       error            `json:"-"`
}

// Engine is a single simulated venue. It is not safe for concurrent use:
// the timeline, books and ledger are only mutated inside Step.
type Engine struct {
	venue          string
	logger         *logger.Logger
	ticker         *pricing.Ticker
	latency        latencyv1.Model
	ledger         *ledger.Ledger
	onRejection    func(Rejection)
	disableHistory bool

	markets map[string]marketv1.Market
	symbols []string
	books   map[string]*orderbook.Orderbook
	tobs    map[string]marketv1.TOB
	initial map[string]marketv1.TOB

	// scheduled holds loaded market data; live is the delivered copy.
	scheduled *timeline.Timeline
	live      *timeline.Timeline
	prepared  bool

	clock      int64
	orderSeq   uint64
	tradeSeq   uint64
	orders     []*orderbookv1.Order
	ordersByID map[uint64]*orderbookv1.Order
	trades     []*orderbookv1.Trade
	history    []historyv1.BalanceSnapshot
	rejections []Rejection
	steps      int64
}

// NewEngine creates a new instance of Engine with the default options.
func NewEngine(log *logger.Logger) (*Engine, error) {
	return NewEngineWithOptions(log, DefaultEngineOptions())
}

// NewEngineWithOptions creates a new engine with custom options.
func NewEngineWithOptions(log *logger.Logger, options *Options) (*Engine, error) {
	ticker, err := pricing.NewTicker(options.TickSize)
	if err != nil {
		return nil, err
	}

	l, err := ledger.New(options.Mode, options.TakerFeeBps, options.MakerFeeBps)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNop()
	}

	model := options.Latency
	if model == nil {
		model = DefaultEngineOptions().Latency
	}

	e := &Engine{
		venue:          options.Venue,
		logger:         log.WithFields(logger.NewField("venue", options.Venue)),
		ticker:         ticker,
		latency:        model,
		ledger:         l,
		onRejection:    options.OnRejection,
		disableHistory: options.DisableHistory,

		markets:    make(map[string]marketv1.Market),
		books:      make(map[string]*orderbook.Orderbook),
		tobs:       make(map[string]marketv1.TOB),
		initial:    make(map[string]marketv1.TOB),
		scheduled:  timeline.New(),
		ordersByID: make(map[uint64]*orderbookv1.Order),
	}

	return e, nil
}

// prepare materialises the live timeline from the loaded market data once.
func (e *Engine) prepare() {
	if e.prepared {
		return
	}
	e.live = e.scheduled.Clone()
	e.prepared = true

	e.logger.Debug("Timeline prepared",
		logger.NewField("events", e.live.Len()),
		logger.NewField("markets", len(e.markets)),
	)
}

// Step processes the next event, reconciles the affected book against the
// current top of book and records a balance snapshot. Non-fatal errors are
// reported as rejections; only fatal errors are returned.
func (e *Engine) Step(ctx context.Context) error {
	e.prepare()

	ts, ev, err := e.live.PopNext()
	if err != nil {
		return errors.NewTracer("pop next event").Wrap(err)
	}

	if ts < e.clock {
		return errors.NewTracer("step").Wrap(
			orderbookv1.ErrInvalidEventOrdering.Errorf("%s at %d, clock at %d", ev.Kind(), ts, e.clock),
		)
	}
	e.clock = ts
	e.steps++

	if err := e.dispatch(ts, ev); err != nil {
		if errors.IsFatal(err) {
			return errors.NewTracer("dispatch " + ev.Kind().String()).Wrap(err)
		}
		e.reject(ctx, ts, ev, err)
	}

	if err := e.reconcile(ev.Market(), ts); err != nil {
		return errors.NewTracer("reconcile " + ev.Market()).Wrap(err)
	}

	e.recordSnapshot(ts)
	return nil
}

// RunSimulation runs strategy and then one step until the timeline is
// drained. A nil strategy only replays the timeline.
func (e *Engine) RunSimulation(ctx context.Context, strategy Strategy) error {
	e.prepare()
	ctx = util.WithVenue(ctx, e.venue)

	e.logger.InfoContext(ctx, "Simulation started", logger.NewField("events", e.live.Len()))

	for !e.live.IsEmpty() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if strategy != nil {
			if err := strategy.RunStrategy(ctx); err != nil {
				return errors.NewTracer("run strategy").Wrap(err)
			}
		}

		if err := e.Step(ctx); err != nil {
			e.logger.ErrorContext(ctx, err, logger.NewField("clock", e.clock))
			return err
		}
	}

	e.logger.InfoContext(ctx, "Simulation finished",
		logger.NewField("steps", e.steps),
		logger.NewField("orders", len(e.orders)),
		logger.NewField("trades", len(e.trades)),
		logger.NewField("rejections", len(e.rejections)),
		logger.NewField("balances", e.ledger.Balances()),
	)
	return nil
}

func (e *Engine) reject(ctx context.Context, ts int64, ev eventv1.Event, err error) {
	r := Rejection{
		Timestamp: ts,
		Kind:      ev.Kind(),
		Symbol:    ev.Market(),
		OrderID:   eventOrderID(ev),
		Code:      errors.CodeOf(err),
		Err:       err,
	}
	e.rejections = append(e.rejections, r)

	e.logger.WarnContext(ctx, "Event rejected",
		logger.NewField("event", r.Kind.String()),
		logger.NewField("symbol", r.Symbol),
		logger.NewField("orderID", r.OrderID),
		logger.NewField("code", r.Code),
		logger.NewField("error", err.Error()),
		logger.NewField("ts", ts),
	)

	if e.onRejection != nil {
		e.onRejection(r)
	}
}

func eventOrderID(ev eventv1.Event) uint64 {
	switch ev := ev.(type) {
	case eventv1.NewOrder:
		return ev.Order.ID
	case eventv1.ModifyOrder:
		return ev.OrderID
	case eventv1.CancelOrder:
		return ev.OrderID
	}
	return 0
}

func (e *Engine) recordSnapshot(ts int64) {
	if e.disableHistory {
		return
	}

	mids := make(map[string]float64, len(e.tobs))
	for symbol, tob := range e.tobs {
		if tob.HasBid() && tob.HasAsk() {
			mids[symbol] = e.ticker.Mid(tob.BidPrice, tob.AskPrice)
		}
	}

	snap := historyv1.BalanceSnapshot{
		Timestamp: ts,
		Balances:  e.ledger.Balances(),
		Mids:      mids,
	}
	if e.ledger.Mode() == ledger.ModeDerivative {
		snap.Positions = e.ledger.Positions()
	}
	e.history = append(e.history, snap)
}

// Snapshot captures resting orders, balances and counters of the venue.
func (e *Engine) Snapshot(ctx context.Context) *snapshotv1.Snapshot {
	snap := &snapshotv1.Snapshot{
		Venue:         e.venue,
		RunID:         util.GetRunID(ctx),
		Clock:         e.clock,
		OrderSequence: e.orderSeq,
		TradeSequence: e.tradeSeq,
		Balances:      e.ledger.Balances(),
		Books:         make([]snapshotv1.OrderBookSnapshot, 0, len(e.symbols)),
	}
	if e.ledger.Mode() == ledger.ModeDerivative {
		snap.Positions = e.ledger.Positions()
	}
	for _, symbol := range e.symbols {
		snap.Books = append(snap.Books, e.books[symbol].CreateSnapshot())
	}
	return snap
}

// Reset returns the engine to its state right after data loading: balances
// back to the deposits, empty books, the initial top of book and a fresh
// copy of the loaded market data. Orders, trades and history are dropped.
func (e *Engine) Reset() {
	e.ledger.Reset()
	for _, symbol := range e.symbols {
		e.books[symbol] = orderbook.NewOrderbook(symbol)
	}
	e.tobs = make(map[string]marketv1.TOB, len(e.initial))
	for symbol, tob := range e.initial {
		e.tobs[symbol] = tob
	}

	e.live = nil
	e.prepared = false
	e.clock = 0
	e.orderSeq = 0
	e.tradeSeq = 0
	e.steps = 0
	e.orders = nil
	e.ordersByID = make(map[uint64]*orderbookv1.Order)
	e.trades = nil
	e.history = nil
	e.rejections = nil

	e.logger.Debug("Engine reset")
}

// Venue returns the venue name.
func (e *Engine) Venue() string {
	return e.venue
}

// Now returns the timestamp of the last processed event.
func (e *Engine) Now() int64 {
	return e.clock
}

// Steps returns the number of processed events.
func (e *Engine) Steps() int64 {
	return e.steps
}

// PeekTimestamp returns the timestamp of the next event.
func (e *Engine) PeekTimestamp() (int64, bool) {
	e.prepare()
	return e.live.PeekTimestamp()
}

// Done reports whether every scheduled event was processed.
func (e *Engine) Done() bool {
	e.prepare()
	return e.live.IsEmpty()
}

// Pending returns the number of events left.
func (e *Engine) Pending() int {
	e.prepare()
	return e.live.Len()
}

// Balance returns the balance of currency.
func (e *Engine) Balance(currency string) float64 {
	return e.ledger.Balance(currency)
}

// Balances returns a copy of all balances.
func (e *Engine) Balances() map[string]float64 {
	return e.ledger.Balances()
}

// Position returns the derivative position of symbol.
func (e *Engine) Position(symbol string) float64 {
	return e.ledger.Position(symbol)
}

// Positions returns a copy of all derivative positions.
func (e *Engine) Positions() map[string]float64 {
	return e.ledger.Positions()
}

// Orders returns every order placed in this run, in placement order.
func (e *Engine) Orders() []*orderbookv1.Order {
	out := make([]*orderbookv1.Order, len(e.orders))
	copy(out, e.orders)
	return out
}

// Order returns an order by id.
func (e *Engine) Order(id uint64) (*orderbookv1.Order, bool) {
	o, ok := e.ordersByID[id]
	return o, ok
}

// OpenOrders returns the resting orders of symbol, bids best first then asks best first.
func (e *Engine) OpenOrders(symbol string) []*orderbookv1.Order {
	book, ok := e.books[symbol]
	if !ok {
		return nil
	}
	out := make([]*orderbookv1.Order, 0, book.Len())
	for _, levels := range [][]*orderbookv1.Level{book.Bids(), book.Asks()} {
		for _, level := range levels {
			out = append(out, level.Orders...)
		}
	}
	return out
}

// Trades returns every fill in execution order.
func (e *Engine) Trades() []*orderbookv1.Trade {
	out := make([]*orderbookv1.Trade, len(e.trades))
	copy(out, e.trades)
	return out
}

// BalanceHistory returns the balance snapshots recorded after each step.
func (e *Engine) BalanceHistory() []historyv1.BalanceSnapshot {
	out := make([]historyv1.BalanceSnapshot, len(e.history))
	copy(out, e.history)
	return out
}

// Rejections returns the non-fatal errors raised so far.
func (e *Engine) Rejections() []Rejection {
	out := make([]Rejection, len(e.rejections))
	copy(out, e.rejections)
	return out
}

// Markets returns the registered markets in registration order.
func (e *Engine) Markets() []marketv1.Market {
	out := make([]marketv1.Market, 0, len(e.symbols))
	for _, symbol := range e.symbols {
		out = append(out, e.markets[symbol])
	}
	return out
}

// Ticker returns the price converter of the venue.
func (e *Engine) Ticker() *pricing.Ticker {
	return e.ticker
}
