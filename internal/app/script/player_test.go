package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadchandra19/exchange-simulator/internal/app/engine"
	marketv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/market/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
)

const t0 = int64(1_700_000_000_000_000_000)

func newScriptedEngine(t *testing.T, s *Scenario) *engine.Engine {
	options := engine.DefaultEngineOptions()
	options.TickSize = "0.01"

	e, err := engine.NewEngineWithOptions(logger.NewNop(), options)
	require.NoError(t, err)
	require.NoError(t, s.Setup(e))

	var quotes []marketv1.Quote
	for i := int64(0); i <= 3; i++ {
		quotes = append(quotes, marketv1.Quote{Timestamp: t0 + i*10, BidQty: 1, BidPrice: 99, AskQty: 1, AskPrice: 101})
	}
	require.NoError(t, e.LoadTOB("BTCUSDT", quotes))
	return e
}

func TestPlayer_RunsScenario(t *testing.T) {
	s, err := Parse([]byte(validScenario))
	require.NoError(t, err)

	e := newScriptedEngine(t, s)
	assert.Equal(t, 10000.0, e.Balance("USDT"))

	player := NewPlayer(e, s, logger.NewNop())
	require.NoError(t, e.RunSimulation(context.Background(), player))

	assert.Zero(t, player.Remaining())

	order, ok := player.Order("bid")
	require.True(t, ok)
	assert.Equal(t, orderbookv1.StatusCancelled, order.Status)
	assert.Equal(t, int64(9975), order.LimitPrice)
	assert.Equal(t, t0+5, order.EntryTime)
	assert.Empty(t, e.OpenOrders("BTCUSDT"))
	assert.Empty(t, e.Rejections())
}

func TestPlayer_SubmitsOnlyDueOrders(t *testing.T) {
	s := &Scenario{
		Markets:  []marketv1.Market{{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT"}},
		Balances: map[string]float64{"USDT": 1000},
		Orders: []ScriptedOrder{
			{Ref: "now", At: t0 + 15, Action: ActionMarket, Symbol: "BTCUSDT", Side: "buy", Amount: 1},
			{Ref: "late", At: t0 + 1_000, Action: ActionMarket, Symbol: "BTCUSDT", Side: "buy", Amount: 1},
		},
	}
	require.NoError(t, s.Validate())

	e := newScriptedEngine(t, s)
	player := NewPlayer(e, s, logger.NewNop())

	require.NoError(t, player.RunStrategy(context.Background()))
	_, ok := player.Order("now")
	assert.False(t, ok)

	require.NoError(t, e.Step(context.Background()))
	require.NoError(t, player.RunStrategy(context.Background()))
	order, ok := player.Order("now")
	require.True(t, ok)
	assert.Equal(t, orderbookv1.Buy, order.Side)
	assert.Equal(t, 1, player.Remaining())

	require.NoError(t, e.RunSimulation(context.Background(), player))
	assert.Equal(t, 1, player.Remaining())
	assert.Equal(t, 1.0, e.Balance("BTC"))
}

func TestPlayer_EngineRejectsOrder(t *testing.T) {
	s := &Scenario{
		Markets: []marketv1.Market{{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT"}},
		Orders:  []ScriptedOrder{{Ref: "x", At: t0, Action: ActionLimit, Symbol: "BTCUSDT", Side: "buy", Amount: 1, Price: 0.001}},
	}

	e := newScriptedEngine(t, s)
	err := NewPlayer(e, s, logger.NewNop()).RunStrategy(context.Background())
	assert.ErrorIs(t, err, orderbookv1.ErrInvalidPrice)
}
