package script

import (
	"context"

	"github.com/muhammadchandra19/exchange-simulator/internal/app/engine"
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
)

var _ engine.Strategy = (*Player)(nil)

// Setup registers the scenario markets and deposits its balances.
func (s *Scenario) Setup(e *engine.Engine) error {
	for _, m := range s.Markets {
		if err := e.AddMarket(m.Symbol, m.Base, m.Quote); err != nil {
			return errors.NewTracer("add market " + m.Symbol).Wrap(err)
		}
	}
	for currency, amount := range s.Balances {
		e.AddBalance(currency, amount)
	}
	return nil
}

// Player is a Strategy that submits the scenario orders once the venue is
// about to process an event at or after their decision time.
type Player struct {
	engine *engine.Engine
	orders []ScriptedOrder
	next   int
	refs   map[string]*orderbookv1.Order
	logger *logger.Logger
}

// NewPlayer creates a player of scenario against e.
func NewPlayer(e *engine.Engine, scenario *Scenario, log *logger.Logger) *Player {
	return &Player{
		engine: e,
		orders: scenario.Orders,
		refs:   make(map[string]*orderbookv1.Order),
		logger: log,
	}
}

// RunStrategy submits every order due before the next event.
func (p *Player) RunStrategy(ctx context.Context) error {
	ts, ok := p.engine.PeekTimestamp()
	if !ok {
		return nil
	}

	for p.next < len(p.orders) && p.orders[p.next].At <= ts {
		o := p.orders[p.next]
		if err := p.submit(o); err != nil {
			return errors.NewTracer("scripted order " + o.Ref).Wrap(err)
		}
		p.next++
	}
	return nil
}

func (p *Player) submit(o ScriptedOrder) error {
	var (
		order *orderbookv1.Order
		err   error
	)

	switch o.Action {
	case ActionMarket:
		side, _ := orderbookv1.ParseSide(o.Side)
		order, err = p.engine.MarketOrder(o.Symbol, o.Amount, side, o.At)
	case ActionLimit:
		side, _ := orderbookv1.ParseSide(o.Side)
		order, err = p.engine.LimitOrder(o.Symbol, o.Amount, o.Price, side, o.At)
	case ActionCancel:
		err = p.engine.CancelOrder(p.refs[o.Target])
	case ActionModify:
		err = p.engine.ModifyOrder(p.refs[o.Target], engine.Modification{Price: o.NewPrice, Amount: o.NewAmount})
	default:
		return ErrScenario.Errorf("unknown action %q", o.Action)
	}
	if err != nil {
		return err
	}

	if order != nil && o.Ref != "" {
		p.refs[o.Ref] = order
	}

	p.logger.Debug("Scripted order submitted",
		logger.NewField("ref", o.Ref),
		logger.NewField("action", string(o.Action)),
		logger.NewField("symbol", o.Symbol),
		logger.NewField("at", o.At),
	)
	return nil
}

// Order returns the order submitted under ref.
func (p *Player) Order(ref string) (*orderbookv1.Order, bool) {
	order, ok := p.refs[ref]
	return order, ok
}

// Remaining returns the number of scripted orders not yet submitted. Orders
// decided after the last market event are never submitted.
func (p *Player) Remaining() int {
	return len(p.orders) - p.next
}
