package engine

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	eventv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/event/v1"
	latencyv1_mock "github.com/muhammadchandra19/exchange-simulator/internal/domain/latency/v1/mock"
	marketv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/market/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-simulator/internal/usecase/ledger"
	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
	"github.com/muhammadchandra19/exchange-simulator/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSymbol = "BTCUSDT"
	t0         = int64(1_700_000_000_000_000_000)
	takerRate  = 0.0002
)

func newTestEngine(t testing.TB, opts ...func(*Options)) *Engine {
	options := DefaultEngineOptions()
	options.Venue = "test"
	options.TakerFeeBps = 2
	options.MakerFeeBps = 0
	options.TickSize = "0.01"
	for _, opt := range opts {
		opt(options)
	}

	e, err := NewEngineWithOptions(logger.NewNop(), options)
	require.NoError(t, err)
	require.NoError(t, e.AddMarket(testSymbol, "BTC", "USDT"))
	return e
}

func quote(ts int64, bid, ask float64) marketv1.Quote {
	return marketv1.Quote{Timestamp: ts, BidQty: 1, BidPrice: bid, AskQty: 1, AskPrice: ask}
}

func drain(t testing.TB, e *Engine) {
	for !e.Done() {
		require.NoError(t, e.Step(context.Background()))
	}
}

func TestNewEngineWithOptions(t *testing.T) {
	testCases := []struct {
		name     string
		modify   func(*Options)
		wantCode errors.ErrorCode
	}{
		{name: "defaults", modify: func(*Options) {}},
		{name: "bad tick size", modify: func(o *Options) { o.TickSize = "abc" }, wantCode: errors.InvalidTickSize},
		{name: "bad mode", modify: func(o *Options) { o.Mode = "margin" }, wantCode: errors.InvalidSettlementMode},
		{name: "nil latency falls back", modify: func(o *Options) { o.Latency = nil }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			options := DefaultEngineOptions()
			tc.modify(options)
			e, err := NewEngineWithOptions(nil, options)
			if tc.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tc.wantCode, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "sim", e.Venue())
			assert.True(t, e.Done())
		})
	}
}

func TestEngine_AddMarket(t *testing.T) {
	e := newTestEngine(t)

	assert.NoError(t, e.AddMarket(testSymbol, "BTC", "USDT"))
	assert.ErrorIs(t, e.AddMarket(testSymbol, "BTC", "USDC"), orderbookv1.ErrUnknownMarket)
	assert.ErrorIs(t, e.AddMarket("", "BTC", "USDT"), orderbookv1.ErrUnknownMarket)
	require.NoError(t, e.AddMarket("ETHUSDT", "ETH", "USDT"))

	assert.Equal(t, []marketv1.Market{
		{Symbol: testSymbol, Base: "BTC", Quote: "USDT"},
		{Symbol: "ETHUSDT", Base: "ETH", Quote: "USDT"},
	}, e.Markets())
	assert.Equal(t, map[string]float64{"BTC": 0, "ETH": 0, "USDT": 0}, e.Balances())
}

func TestEngine_LoadValidation(t *testing.T) {
	e := newTestEngine(t)

	assert.ErrorIs(t, e.LoadTOB("ETHUSDT", []marketv1.Quote{quote(t0, 1, 2)}), orderbookv1.ErrUnknownMarket)
	assert.ErrorIs(t, e.LoadTrades("ETHUSDT", nil), orderbookv1.ErrUnknownMarket)

	// Prices beyond the int64 tick range reject the whole batch.
	err := e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 100, 101), quote(t0+1, 100, 1e17)})
	assert.ErrorIs(t, err, orderbookv1.ErrInvalidPrice)
	_, err = e.FetchTOB(testSymbol)
	assert.ErrorIs(t, err, orderbookv1.ErrNoMarketData)
	err = e.LoadTrades(testSymbol, []marketv1.Print{
		{Timestamp: t0, Side: orderbookv1.Buy, Price: 100, Amount: 1},
		{Timestamp: t0 + 1, Side: orderbookv1.Buy, Price: -1e17, Amount: 1},
	})
	assert.ErrorIs(t, err, orderbookv1.ErrInvalidPrice)

	require.NoError(t, e.LoadTOB(testSymbol, nil))
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 100, 101), quote(t0+1, 100, 102)}))
	assert.Equal(t, 1, e.Pending())

	err = e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0+2, 100, 101)})
	assert.ErrorIs(t, err, orderbookv1.ErrSimulationStarted)
	err = e.LoadTrades(testSymbol, []marketv1.Print{{Timestamp: t0 + 2, Side: orderbookv1.Buy, Price: 1, Amount: 1}})
	assert.ErrorIs(t, err, orderbookv1.ErrSimulationStarted)
}

func TestEngine_OrderValidation(t *testing.T) {
	e := newTestEngine(t)

	testCases := []struct {
		name    string
		place   func() (*orderbookv1.Order, error)
		wantErr error
	}{
		{
			name:    "unknown market",
			place:   func() (*orderbookv1.Order, error) { return e.MarketOrder("ETHUSDT", 1, orderbookv1.Buy, t0) },
			wantErr: orderbookv1.ErrUnknownMarket,
		},
		{
			name:    "zero amount",
			place:   func() (*orderbookv1.Order, error) { return e.MarketOrder(testSymbol, 0, orderbookv1.Buy, t0) },
			wantErr: orderbookv1.ErrInvalidAmount,
		},
		{
			name:    "negative price",
			place:   func() (*orderbookv1.Order, error) { return e.LimitOrder(testSymbol, 1, -1, orderbookv1.Buy, t0) },
			wantErr: orderbookv1.ErrInvalidPrice,
		},
		{
			name:    "price below one tick",
			place:   func() (*orderbookv1.Order, error) { return e.LimitOrder(testSymbol, 1, 0.001, orderbookv1.Buy, t0) },
			wantErr: orderbookv1.ErrInvalidPrice,
		},
		{
			name:    "price beyond tick range",
			place:   func() (*orderbookv1.Order, error) { return e.LimitOrder(testSymbol, 1, 1e17, orderbookv1.Buy, t0) },
			wantErr: orderbookv1.ErrInvalidPrice,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order, err := tc.place()
			assert.Nil(t, order)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	assert.Empty(t, e.Orders())
	assert.True(t, e.Done())
	assert.ErrorIs(t, e.CancelOrder(nil), orderbookv1.ErrNilOrder)
	assert.ErrorIs(t, e.ModifyOrder(&orderbookv1.Order{Symbol: testSymbol}, Modification{Amount: util.Pointer(-1.0)}), orderbookv1.ErrInvalidAmount)
	assert.ErrorIs(t, e.ModifyOrder(&orderbookv1.Order{Symbol: testSymbol}, Modification{Price: util.Pointer(0.0)}), orderbookv1.ErrInvalidPrice)
	assert.ErrorIs(t, e.ModifyOrder(&orderbookv1.Order{Symbol: testSymbol}, Modification{Price: util.Pointer(1e17)}), orderbookv1.ErrInvalidPrice)
}

// A buy limit above the ask fills at the ask as taker.
func TestEngine_MarketableLimitFillsAtTopOfBook(t *testing.T) {
	e := newTestEngine(t)
	e.AddBalance("USDT", 1000)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 100, 101)}))

	order, err := e.LimitOrder(testSymbol, 1, 102, orderbookv1.Buy, t0)
	require.NoError(t, err)
	drain(t, e)

	trades := e.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, 101.0, trades[0].Price)
	assert.Equal(t, 1.0, trades[0].Amount)
	assert.True(t, trades[0].Taker)
	assert.InDelta(t, 101*takerRate, trades[0].Fee, 1e-12)

	assert.InDelta(t, 1000-101*(1+takerRate), e.Balance("USDT"), 1e-9)
	assert.Equal(t, 1.0, e.Balance("BTC"))
	assert.Empty(t, e.OpenOrders(testSymbol))
	_, ok := e.books[testSymbol].BestBid()
	assert.False(t, ok)
	assert.Equal(t, orderbookv1.StatusFilled, order.Status)
	assert.Equal(t, t0, order.EventTime)
	assert.Empty(t, e.Rejections())
}

// Two sells at the same price fill in admission order.
func TestEngine_FIFOAtEqualPrice(t *testing.T) {
	e := newTestEngine(t)
	e.AddBalance("BTC", 2)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 100, 106)}))
	require.NoError(t, e.LoadTrades(testSymbol, []marketv1.Print{
		{Timestamp: t0 + 100, Side: orderbookv1.Buy, Price: 105, Amount: 1},
	}))

	a, err := e.LimitOrder(testSymbol, 1, 105, orderbookv1.Sell, t0)
	require.NoError(t, err)
	b, err := e.LimitOrder(testSymbol, 1, 105, orderbookv1.Sell, t0)
	require.NoError(t, err)
	drain(t, e)

	assert.Equal(t, orderbookv1.StatusFilled, a.Status)
	assert.Equal(t, orderbookv1.StatusOpen, b.Status)
	assert.Equal(t, []*orderbookv1.Order{b}, e.OpenOrders(testSymbol))

	level := e.books[testSymbol].BestAskLevel()
	require.NotNil(t, level)
	assert.Equal(t, int64(10500), level.Price)
	assert.Equal(t, 1, level.Count)

	trades := e.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, a.ID, trades[0].OrderID)
	assert.False(t, trades[0].Taker)
	assert.Equal(t, 105.0, e.Balance("USDT"))
	assert.Equal(t, 1.0, e.Balance("BTC"))
}

func TestEngine_PartialPrintFillsOldestFirst(t *testing.T) {
	e := newTestEngine(t)
	e.AddBalance("BTC", 2)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 100, 106)}))
	require.NoError(t, e.LoadTrades(testSymbol, []marketv1.Print{
		{Timestamp: t0 + 100, Side: orderbookv1.Buy, Price: 105.5, Amount: 0.4},
	}))

	a, _ := e.LimitOrder(testSymbol, 1, 105, orderbookv1.Sell, t0)
	b, _ := e.LimitOrder(testSymbol, 1, 105, orderbookv1.Sell, t0)
	drain(t, e)

	assert.Equal(t, orderbookv1.StatusPartiallyFilled, a.Status)
	assert.InDelta(t, 0.6, a.Remaining, 1e-12)
	assert.Equal(t, orderbookv1.StatusOpen, b.Status)
	level := e.books[testSymbol].BestAskLevel()
	assert.Equal(t, 2, level.Count)
	assert.InDelta(t, 1.6, level.Total, 1e-12)

	trades := e.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, 105.0, trades[0].Price, "fills at the resting price")
}

func TestEngine_PrintOnlyTouchesTopOfBook(t *testing.T) {
	e := newTestEngine(t)
	e.AddBalance("USDT", 1000)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 100, 101)}))
	require.NoError(t, e.LoadTrades(testSymbol, []marketv1.Print{
		{Timestamp: t0 + 100, Side: orderbookv1.Sell, Price: 98.5, Amount: 5},
		{Timestamp: t0 + 200, Side: orderbookv1.Sell, Price: 99.5, Amount: 5},
	}))

	high, _ := e.LimitOrder(testSymbol, 1, 99, orderbookv1.Buy, t0)
	low, _ := e.LimitOrder(testSymbol, 1, 98, orderbookv1.Buy, t0)
	drain(t, e)

	assert.Equal(t, orderbookv1.StatusFilled, high.Status)
	assert.Equal(t, orderbookv1.StatusOpen, low.Status)
	require.Len(t, e.Trades(), 1)
	assert.Equal(t, 99.0, e.Trades()[0].Price)
	assert.Equal(t, 1.0, e.Balance("BTC"))
}

// A resting buy becomes marketable when the ask drops below it.
func TestEngine_ReconcileAfterTopOfBookMove(t *testing.T) {
	e := newTestEngine(t)
	e.AddBalance("USDT", 1000)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{
		quote(t0, 100, 101),
		quote(t0+100, 97, 98),
	}))

	order, err := e.LimitOrder(testSymbol, 2, 99, orderbookv1.Buy, t0)
	require.NoError(t, err)

	require.NoError(t, e.Step(context.Background()))
	assert.Len(t, e.OpenOrders(testSymbol), 1)
	assert.Empty(t, e.Trades())

	require.NoError(t, e.Step(context.Background()))
	trades := e.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, 98.0, trades[0].Price)
	assert.Equal(t, 2.0, trades[0].Amount)
	assert.False(t, trades[0].Taker)
	assert.Equal(t, orderbookv1.StatusFilled, order.Status)
	assert.Empty(t, e.OpenOrders(testSymbol))
	assert.InDelta(t, 1000-196, e.Balance("USDT"), 1e-9)
	assert.Equal(t, 2.0, e.Balance("BTC"))
}

func TestEngine_ReconcileDrainsSeveralLevels(t *testing.T) {
	e := newTestEngine(t)
	e.AddBalance("BTC", 3)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{
		quote(t0, 100, 101),
		quote(t0+100, 104, 105),
	}))

	for _, price := range []float64{102, 103, 105} {
		_, err := e.LimitOrder(testSymbol, 1, price, orderbookv1.Sell, t0)
		require.NoError(t, err)
	}
	drain(t, e)

	trades := e.Trades()
	require.Len(t, trades, 2)
	for _, tr := range trades {
		assert.Equal(t, 104.0, tr.Price)
	}
	open := e.OpenOrders(testSymbol)
	require.Len(t, open, 1)
	assert.Equal(t, int64(10500), open[0].LimitPrice)
}

// Cancelling an order that already filled changes nothing.
func TestEngine_OwnBookNeverCrosses(t *testing.T) {
	testCases := []struct {
		name     string
		place    func(e *Engine) *orderbookv1.Order
		wantBid  int64
		wantAsk  int64
		wantCode errors.ErrorCode
		trades   int
	}{
		{
			name: "sell below own bid is rejected",
			place: func(e *Engine) *orderbookv1.Order {
				o, _ := e.LimitOrder(testSymbol, 1, 100, orderbookv1.Sell, t0)
				return o
			},
			wantBid:  10500,
			wantCode: errors.CrossesOwnOrder,
		},
		{
			name: "sell locking own bid is rejected",
			place: func(e *Engine) *orderbookv1.Order {
				o, _ := e.LimitOrder(testSymbol, 1, 105, orderbookv1.Sell, t0)
				return o
			},
			wantBid:  10500,
			wantCode: errors.CrossesOwnOrder,
		},
		{
			name: "sell above own bid rests",
			place: func(e *Engine) *orderbookv1.Order {
				o, _ := e.LimitOrder(testSymbol, 1, 106, orderbookv1.Sell, t0)
				return o
			},
			wantBid: 10500,
			wantAsk: 10600,
		},
		{
			name: "sell marketable against the top of book fills",
			place: func(e *Engine) *orderbookv1.Order {
				o, _ := e.LimitOrder(testSymbol, 1, 98, orderbookv1.Sell, t0)
				return o
			},
			wantBid: 10500,
			trades:  1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			e.AddBalance("USDT", 1000)
			e.AddBalance("BTC", 2)
			require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 99, 110)}))

			bid, err := e.LimitOrder(testSymbol, 1, 105, orderbookv1.Buy, t0)
			require.NoError(t, err)
			order := tc.place(e)
			require.NotNil(t, order)
			drain(t, e)

			book := e.books[testSymbol]
			gotBid, _ := book.BestBid()
			gotAsk, _ := book.BestAsk()
			assert.Equal(t, tc.wantBid, gotBid)
			assert.Equal(t, tc.wantAsk, gotAsk)
			assert.Equal(t, orderbookv1.StatusOpen, bid.Status)
			assert.Len(t, e.Trades(), tc.trades)

			if tc.wantCode == "" {
				assert.Empty(t, e.Rejections())
				return
			}
			require.Len(t, e.Rejections(), 1)
			assert.Equal(t, tc.wantCode, e.Rejections()[0].Code)
			assert.Equal(t, order.ID, e.Rejections()[0].OrderID)
			assert.Equal(t, orderbookv1.StatusRejected, order.Status)
			assert.Equal(t, 2.0, e.Balance("BTC"))
		})
	}
}

func TestEngine_ModifyCannotCrossOwnBook(t *testing.T) {
	e := newTestEngine(t)
	e.AddBalance("USDT", 1000)
	e.AddBalance("BTC", 1)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 99, 110)}))

	bid, _ := e.LimitOrder(testSymbol, 1, 105, orderbookv1.Buy, t0)
	ask, _ := e.LimitOrder(testSymbol, 1, 108, orderbookv1.Sell, t0)
	drain(t, e)

	require.NoError(t, e.ModifyOrder(ask, Modification{Price: util.Pointer(104.0), Amount: util.Pointer(0.5)}))
	drain(t, e)

	require.Len(t, e.Rejections(), 1)
	assert.Equal(t, errors.CrossesOwnOrder, e.Rejections()[0].Code)
	assert.Equal(t, int64(10800), ask.LimitPrice)
	assert.Equal(t, 1.0, ask.Remaining)
	assert.Equal(t, orderbookv1.StatusOpen, ask.Status)
	assert.Equal(t, orderbookv1.StatusOpen, bid.Status)
	assert.Empty(t, e.Trades())
}

func TestEngine_CancelFilledOrder(t *testing.T) {
	e := newTestEngine(t)
	e.AddBalance("USDT", 1000)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 100, 101)}))

	order, err := e.LimitOrder(testSymbol, 1, 102, orderbookv1.Buy, t0)
	require.NoError(t, err)
	drain(t, e)

	balances := e.Balances()
	before := *order
	require.NoError(t, e.CancelOrder(order))
	drain(t, e)

	assert.Equal(t, balances, e.Balances())
	assert.Equal(t, before, *order)
	assert.Len(t, e.Trades(), 1)
	assert.Empty(t, e.OpenOrders(testSymbol))

	rejections := e.Rejections()
	require.Len(t, rejections, 1)
	assert.Equal(t, errors.OrderNotFound, rejections[0].Code)
	assert.Equal(t, eventv1.KindCancelOrder, rejections[0].Kind)
	assert.Equal(t, order.ID, rejections[0].OrderID)
	assert.ErrorIs(t, rejections[0].Err, orderbookv1.ErrOrderNotFound)
}

func TestEngine_CancelRestingOrder(t *testing.T) {
	e := newTestEngine(t)
	e.AddBalance("USDT", 1000)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 100, 101)}))

	order, _ := e.LimitOrder(testSymbol, 1, 99, orderbookv1.Buy, t0)
	require.NoError(t, e.Step(context.Background()))
	require.NoError(t, e.CancelOrder(order))
	drain(t, e)

	assert.Equal(t, orderbookv1.StatusCancelled, order.Status)
	assert.Empty(t, e.OpenOrders(testSymbol))
	assert.NoError(t, e.books[testSymbol].Validate())

	require.NoError(t, e.CancelOrder(order))
	drain(t, e)
	require.Len(t, e.Rejections(), 1)
	assert.Equal(t, orderbookv1.StatusCancelled, order.Status)
}

func TestEngine_InsufficientBalance(t *testing.T) {
	var reported []Rejection
	e := newTestEngine(t, func(o *Options) {
		o.OnRejection = func(r Rejection) { reported = append(reported, r) }
	})
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 100, 101)}))

	buy, err := e.LimitOrder(testSymbol, 1, 99, orderbookv1.Buy, t0)
	require.NoError(t, err)
	sell, err := e.MarketOrder(testSymbol, 1, orderbookv1.Sell, t0)
	require.NoError(t, err)
	drain(t, e)

	assert.Empty(t, e.OpenOrders(testSymbol))
	assert.Empty(t, e.Trades())
	assert.Equal(t, map[string]float64{"BTC": 0, "USDT": 0}, e.Balances())
	assert.Equal(t, orderbookv1.StatusRejected, buy.Status)
	assert.Equal(t, orderbookv1.StatusRejected, sell.Status)

	require.Len(t, reported, 2)
	assert.Equal(t, reported, e.Rejections())
	for _, r := range reported {
		assert.Equal(t, errors.InsufficientBalance, r.Code)
		assert.ErrorIs(t, r.Err, orderbookv1.ErrInsufficientBalance)
		assert.False(t, errors.IsFatal(r.Err))
	}
}

func TestEngine_MarketOrder(t *testing.T) {
	testCases := []struct {
		name      string
		side      orderbookv1.Side
		wantPrice float64
		wantBase  float64
		wantQuote float64
	}{
		{name: "buy lifts the ask", side: orderbookv1.Buy, wantPrice: 101, wantBase: 11, wantQuote: 1000 - 101*(1+takerRate)},
		{name: "sell hits the bid", side: orderbookv1.Sell, wantPrice: 100, wantBase: 9, wantQuote: 1000 + 100*(1-takerRate)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			e.AddBalance("USDT", 1000)
			e.AddBalance("BTC", 10)
			require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 100, 101)}))

			order, err := e.MarketOrder(testSymbol, 1, tc.side, t0)
			require.NoError(t, err)
			drain(t, e)

			require.Len(t, e.Trades(), 1)
			trade := e.Trades()[0]
			assert.Equal(t, tc.wantPrice, trade.Price)
			assert.True(t, trade.Taker)
			assert.Equal(t, orderbookv1.StatusFilled, order.Status)
			assert.InDelta(t, tc.wantBase, e.Balance("BTC"), 1e-12)
			assert.InDelta(t, tc.wantQuote, e.Balance("USDT"), 1e-9)
		})
	}
}

func TestEngine_MarketOrderWithoutTopOfBook(t *testing.T) {
	e := newTestEngine(t)
	e.AddBalance("USDT", 1000)

	order, err := e.MarketOrder(testSymbol, 1, orderbookv1.Buy, t0)
	require.NoError(t, err)
	drain(t, e)

	assert.Equal(t, orderbookv1.StatusRejected, order.Status)
	require.Len(t, e.Rejections(), 1)
	assert.Equal(t, errors.NoMarketData, e.Rejections()[0].Code)
	_, err = e.FetchTOB(testSymbol)
	assert.ErrorIs(t, err, orderbookv1.ErrNoMarketData)
}

func TestEngine_ModifyKeepsSeniority(t *testing.T) {
	e := newTestEngine(t)
	e.AddBalance("BTC", 5)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 100, 110)}))
	require.NoError(t, e.LoadTrades(testSymbol, []marketv1.Print{
		{Timestamp: t0 + 1000, Side: orderbookv1.Buy, Price: 105, Amount: 1},
	}))

	a, _ := e.LimitOrder(testSymbol, 1, 106, orderbookv1.Sell, t0)
	b, _ := e.LimitOrder(testSymbol, 1, 105, orderbookv1.Sell, t0)
	require.NoError(t, e.Step(context.Background()))
	require.NoError(t, e.Step(context.Background()))

	require.NoError(t, e.ModifyOrder(a, Modification{Price: util.Pointer(105.0), Amount: util.Pointer(2.0)}))
	require.NoError(t, e.Step(context.Background()))

	assert.Equal(t, int64(10500), a.LimitPrice)
	assert.Equal(t, 2.0, a.Amount)
	assert.Equal(t, 2.0, a.Remaining)
	level := e.books[testSymbol].BestAskLevel()
	require.NotNil(t, level)
	assert.Equal(t, []*orderbookv1.Order{a, b}, level.Orders)
	assert.Equal(t, 3.0, level.Total)

	drain(t, e)
	require.Len(t, e.Trades(), 1)
	assert.Equal(t, a.ID, e.Trades()[0].OrderID)
	assert.Equal(t, orderbookv1.StatusPartiallyFilled, a.Status)
	assert.Equal(t, 2.0, a.Amount)
	assert.Equal(t, 1.0, a.Remaining)
	assert.NoError(t, e.books[testSymbol].Validate())
}

func TestEngine_ModifyUnknownOrder(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 100, 110)}))

	ghost := orderbookv1.NewLimitOrder(42, testSymbol, orderbookv1.Buy, 1, 9900, t0)
	require.NoError(t, e.ModifyOrder(ghost, Modification{Price: util.Pointer(98.0)}))
	drain(t, e)

	require.Len(t, e.Rejections(), 1)
	assert.Equal(t, errors.OrderNotFound, e.Rejections()[0].Code)
	assert.Equal(t, eventv1.KindModifyOrder, e.Rejections()[0].Kind)
}

func TestEngine_Latency(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	model := latencyv1_mock.NewMockModel(ctrl)
	model.EXPECT().Estimate().Return(5 * time.Millisecond).AnyTimes()

	e := newTestEngine(t, func(o *Options) { o.Latency = model })
	e.AddBalance("USDT", 1000)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{
		quote(t0, 100, 101),
		quote(t0+int64(20*time.Millisecond), 100, 101),
	}))

	q, err := e.FetchTOB(testSymbol)
	require.NoError(t, err)
	assert.Equal(t, t0+int64(5*time.Millisecond), q.Timestamp)
	assert.Equal(t, 100.0, q.BidPrice)
	assert.Equal(t, 101.0, q.AskPrice)
	assert.Equal(t, 100.5, q.Mid())

	order, err := e.MarketOrder(testSymbol, 1, orderbookv1.Buy, q.Timestamp)
	require.NoError(t, err)
	next, ok := e.PeekTimestamp()
	require.True(t, ok)
	assert.Equal(t, t0+int64(10*time.Millisecond), next)

	drain(t, e)
	assert.Equal(t, t0, order.EntryTime-int64(5*time.Millisecond))
	assert.Equal(t, t0+int64(10*time.Millisecond), order.ArrivalTime)
	assert.Equal(t, t0+int64(20*time.Millisecond), e.Now())

	// Decided in the past: delivered at the clock, never behind it.
	late, err := e.MarketOrder(testSymbol, 1, orderbookv1.Buy, t0)
	require.NoError(t, err)
	drain(t, e)
	assert.Equal(t, t0+int64(20*time.Millisecond), late.ArrivalTime)
	assert.Empty(t, e.Rejections())
}

func TestEngine_SaturatedLatency(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	model := latencyv1_mock.NewMockModel(ctrl)
	model.EXPECT().Estimate().Return(time.Duration(math.MaxInt64)).AnyTimes()

	e := newTestEngine(t, func(o *Options) { o.Latency = model })
	e.AddBalance("USDT", 1000)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{
		quote(t0, 100, 101),
		quote(t0+10, 100, 101),
	}))

	q, err := e.FetchTOB(testSymbol)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), q.Timestamp)

	order, err := e.MarketOrder(testSymbol, 1, orderbookv1.Buy, t0)
	require.NoError(t, err)
	require.NoError(t, e.Step(context.Background()))

	next, ok := e.PeekTimestamp()
	require.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), next)

	drain(t, e)
	assert.Equal(t, int64(math.MaxInt64), order.ArrivalTime)
	assert.Equal(t, orderbookv1.StatusFilled, order.Status)
}

func TestEngine_InvalidEventOrdering(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 100, 101), quote(t0+100, 100, 101)}))
	drain(t, e)

	e.live.Schedule(eventv1.MarketData{TOB: marketv1.TOB{Symbol: testSymbol}}, t0)
	err := e.Step(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, orderbookv1.ErrInvalidEventOrdering)
	assert.True(t, errors.IsFatal(err))
	assert.Equal(t, errors.InvalidEventOrdering, errors.CodeOf(err))
}

type unknownEvent struct {
	eventv1.CancelOrder
}

func TestEngine_UnknownEventKind(t *testing.T) {
	e := newTestEngine(t)
	e.prepare()
	e.live.Schedule(unknownEvent{eventv1.CancelOrder{Symbol: testSymbol}}, t0)

	err := e.Step(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, orderbookv1.ErrUnknownEventKind)
	assert.True(t, errors.IsFatal(err))
	assert.Empty(t, e.Rejections())
}

func TestEngine_StepOnEmptyTimeline(t *testing.T) {
	e := newTestEngine(t)

	err := e.Step(context.Background())
	assert.ErrorIs(t, err, orderbookv1.ErrTimelineEmpty)
	assert.True(t, errors.IsFatal(err))
}

func TestEngine_BalanceHistory(t *testing.T) {
	e := newTestEngine(t)
	e.AddBalance("USDT", 1000)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{
		quote(t0, 100, 101),
		quote(t0+100, 102, 103),
	}))
	_, err := e.MarketOrder(testSymbol, 1, orderbookv1.Buy, t0)
	require.NoError(t, err)
	drain(t, e)

	history := e.BalanceHistory()
	require.Len(t, history, 2)
	flat := history[0].Flatten()
	assert.Len(t, flat, 4)
	assert.Equal(t, 1.0, flat["BTC"])
	assert.InDelta(t, 1000-101*(1+takerRate), flat["USDT"], 1e-9)
	assert.Equal(t, 100.5, flat["BTCUSDT_mid"])
	assert.Equal(t, t0, flat["ts"])
	assert.Equal(t, 102.5, history[1].Mids[testSymbol])
	assert.Equal(t, t0+100, history[1].Timestamp)
	assert.Nil(t, history[1].Positions)

	disabled := newTestEngine(t, func(o *Options) { o.DisableHistory = true })
	require.NoError(t, disabled.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 1, 2), quote(t0+1, 1, 2)}))
	drain(t, disabled)
	assert.Empty(t, disabled.BalanceHistory())
}

func TestEngine_DerivativeMode(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.Mode = ledger.ModeDerivative })
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 100, 101)}))

	_, err := e.MarketOrder(testSymbol, 2, orderbookv1.Sell, t0)
	require.NoError(t, err)
	drain(t, e)

	assert.Empty(t, e.Rejections())
	assert.InDelta(t, 200-200*takerRate, e.Balance("USDT"), 1e-9)
	assert.Zero(t, e.Balance("BTC"))
	assert.Equal(t, -2.0, e.Position(testSymbol))
	assert.Equal(t, map[string]float64{testSymbol: -2}, e.Positions())

	history := e.BalanceHistory()
	require.Len(t, history, 1)
	assert.Equal(t, -2.0, history[0].Flatten()["BTCUSDT_position"])
}

func TestEngine_RunSimulation(t *testing.T) {
	e := newTestEngine(t)
	e.AddBalance("USDT", 1000)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{
		quote(t0, 100, 101),
		quote(t0+100, 99, 100),
		quote(t0+200, 97, 98),
	}))

	calls := 0
	strategy := StrategyFunc(func(ctx context.Context) error {
		calls++
		if calls == 1 {
			q, err := e.FetchTOB(testSymbol)
			if err != nil {
				return err
			}
			_, err = e.LimitOrder(testSymbol, 1, q.BidPrice-1, orderbookv1.Buy, q.Timestamp)
			return err
		}
		return nil
	})

	require.NoError(t, e.RunSimulation(util.WithRunID(context.Background(), "run-1"), strategy))

	assert.Equal(t, 3, calls)
	assert.Equal(t, int64(3), e.Steps())
	require.Len(t, e.Trades(), 1)
	assert.Equal(t, 98.0, e.Trades()[0].Price)
	assert.True(t, e.Done())
}

func TestEngine_RunSimulationErrors(t *testing.T) {
	t.Run("strategy error aborts", func(t *testing.T) {
		e := newTestEngine(t)
		require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 1, 2), quote(t0+1, 1, 2)}))

		boom := fmt.Errorf("boom")
		err := e.RunSimulation(context.Background(), StrategyFunc(func(context.Context) error { return boom }))
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, e.Pending())
	})

	t.Run("cancelled context", func(t *testing.T) {
		e := newTestEngine(t)
		require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 1, 2), quote(t0+1, 1, 2)}))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, e.RunSimulation(ctx, nil), context.Canceled)
	})

	t.Run("nil strategy replays", func(t *testing.T) {
		e := newTestEngine(t)
		require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 1, 2), quote(t0+1, 1, 3)}))
		require.NoError(t, e.RunSimulation(context.Background(), nil))
		q, err := e.FetchTOB(testSymbol)
		require.NoError(t, err)
		assert.Equal(t, 3.0, q.AskPrice)
	})
}

func TestEngine_Snapshot(t *testing.T) {
	e := newTestEngine(t)
	e.AddBalance("USDT", 1000)
	e.AddBalance("BTC", 1)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{quote(t0, 100, 101)}))

	bid, _ := e.LimitOrder(testSymbol, 1, 99, orderbookv1.Buy, t0)
	ask, _ := e.LimitOrder(testSymbol, 0.5, 102, orderbookv1.Sell, t0)
	drain(t, e)

	snap := e.Snapshot(util.WithRunID(context.Background(), "run-7"))
	assert.Equal(t, "test", snap.Venue)
	assert.Equal(t, "run-7", snap.RunID)
	assert.Equal(t, t0, snap.Clock)
	assert.Equal(t, uint64(2), snap.OrderSequence)
	assert.Equal(t, uint64(0), snap.TradeSequence)
	assert.Equal(t, map[string]float64{"USDT": 1000, "BTC": 1}, snap.Balances)
	require.Len(t, snap.Books, 1)
	assert.Equal(t, 2, snap.OrderCount())
	assert.Equal(t, bid.ID, snap.Books[0].Orders[0].OrderID)
	assert.Equal(t, ask.ID, snap.Books[0].Orders[1].OrderID)
	assert.Equal(t, int64(10200), snap.Books[0].Orders[1].Price)
}

func TestEngine_ResetReplaysIdentically(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.Latency = nil })
	e.AddBalance("USDT", 1000)
	require.NoError(t, e.LoadTOB(testSymbol, []marketv1.Quote{
		quote(t0, 100, 101),
		quote(t0+100, 98, 99),
		quote(t0+200, 101, 102),
	}))

	run := func() ([]*orderbookv1.Trade, map[string]float64) {
		placed := false
		err := e.RunSimulation(context.Background(), StrategyFunc(func(context.Context) error {
			if placed {
				return nil
			}
			placed = true
			_, err := e.LimitOrder(testSymbol, 1, 99.5, orderbookv1.Buy, t0)
			return err
		}))
		require.NoError(t, err)
		return e.Trades(), e.Balances()
	}

	trades, balances := run()
	require.Len(t, trades, 1)

	e.Reset()
	assert.Empty(t, e.Trades())
	assert.Empty(t, e.Orders())
	assert.Equal(t, int64(0), e.Now())
	assert.Equal(t, 1000.0, e.Balance("USDT"))
	assert.Equal(t, 2, e.Pending())

	again, balancesAgain := run()
	assert.Equal(t, trades, again)
	assert.Equal(t, balances, balancesAgain)
}
