// Package ledger keeps per-currency balances and derivative positions of a
// venue and applies the settlement arithmetic of spot and derivative markets.
package ledger

import (
	marketv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/market/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
)

// ErrInvalidMode is returned for a settlement mode other than spot or derivative.
var ErrInvalidMode = errors.New(errors.InvalidSettlementMode, errors.SeverityLow, errors.CategoryValidation, "unknown settlement mode")

// Mode selects the settlement arithmetic.
type Mode string

const (
	// ModeSpot moves base and quote balances.
	ModeSpot Mode = "spot"
	// ModeDerivative moves the quote balance and a signed position per symbol.
	ModeDerivative Mode = "derivative"
)

// ParseMode converts a configured mode string.
func ParseMode(v string) (Mode, error) {
	switch Mode(v) {
	case ModeSpot, ModeDerivative:
		return Mode(v), nil
	}
	return "", ErrInvalidMode.Errorf("%q", v)
}

const bpsDivisor = 10000.0

type settler interface {
	canAfford(l *Ledger, m marketv1.Market, side orderbookv1.Side, amount, price float64) bool
	apply(l *Ledger, m marketv1.Market, side orderbookv1.Side, amount, price, fee float64)
}

// Ledger is not safe for concurrent use. The engine mutates it only inside a step.
type Ledger struct {
	mode      Mode
	settler   settler
	takerRate float64
	makerRate float64

	deposits  map[string]float64
	balances  map[string]float64
	positions map[string]float64
}

// New creates a ledger. Fees are given in basis points of notional.
func New(mode Mode, takerFeeBps, makerFeeBps float64) (*Ledger, error) {
	l := &Ledger{
		mode:      mode,
		takerRate: takerFeeBps / bpsDivisor,
		makerRate: makerFeeBps / bpsDivisor,
		deposits:  make(map[string]float64),
		balances:  make(map[string]float64),
		positions: make(map[string]float64),
	}

	switch mode {
	case ModeSpot:
		l.settler = spot{}
	case ModeDerivative:
		l.settler = derivative{}
	default:
		return nil, ErrInvalidMode.Errorf("%q", mode)
	}

	return l, nil
}

// Mode returns the settlement mode.
func (l *Ledger) Mode() Mode {
	return l.mode
}

// Deposit credits amount of currency. Deposits survive Reset.
func (l *Ledger) Deposit(currency string, amount float64) {
	l.deposits[currency] += amount
	l.balances[currency] += amount
}

// Track makes currency appear in Balances even with a zero balance.
func (l *Ledger) Track(currency string) {
	if _, ok := l.balances[currency]; !ok {
		l.balances[currency] = 0
	}
	if _, ok := l.deposits[currency]; !ok {
		l.deposits[currency] = 0
	}
}

// Balance returns the balance of currency.
func (l *Ledger) Balance(currency string) float64 {
	return l.balances[currency]
}

// Position returns the signed derivative position of symbol.
func (l *Ledger) Position(symbol string) float64 {
	return l.positions[symbol]
}

// Balances returns a copy of all balances.
func (l *Ledger) Balances() map[string]float64 {
	return copyMap(l.balances)
}

// Positions returns a copy of all derivative positions.
func (l *Ledger) Positions() map[string]float64 {
	return copyMap(l.positions)
}

// Fee returns the fee charged on notional for the given liquidity.
func (l *Ledger) Fee(notional float64, taker bool) float64 {
	if taker {
		return notional * l.takerRate
	}
	return notional * l.makerRate
}

// CanAfford is the admission check for an order of amount at price.
func (l *Ledger) CanAfford(m marketv1.Market, side orderbookv1.Side, amount, price float64) bool {
	return l.settler.canAfford(l, m, side, amount, price)
}

// Settle applies a fill and returns the fee charged.
func (l *Ledger) Settle(m marketv1.Market, side orderbookv1.Side, amount, price float64, taker bool) float64 {
	fee := l.Fee(amount*price, taker)
	l.settler.apply(l, m, side, amount, price, fee)
	return fee
}

// Reset restores balances to the deposited amounts and clears positions.
func (l *Ledger) Reset() {
	l.balances = copyMap(l.deposits)
	l.positions = make(map[string]float64)
}

// spot exchanges base against quote. The fee is always paid in quote.
type spot struct{}

func (spot) canAfford(l *Ledger, m marketv1.Market, side orderbookv1.Side, amount, price float64) bool {
	if side == orderbookv1.Buy {
		return l.balances[m.Quote] >= amount*price
	}
	return l.balances[m.Base] >= amount
}

func (spot) apply(l *Ledger, m marketv1.Market, side orderbookv1.Side, amount, price, fee float64) {
	s := side.Sign()
	l.balances[m.Base] += amount * s
	l.balances[m.Quote] += -amount*price*s - fee
}

// derivative keeps a signed position and moves only quote. Sells are not margin checked.
type derivative struct{}

func (derivative) canAfford(l *Ledger, m marketv1.Market, side orderbookv1.Side, amount, price float64) bool {
	if side == orderbookv1.Buy {
		return l.balances[m.Quote] >= amount*price
	}
	return true
}

func (derivative) apply(l *Ledger, m marketv1.Market, side orderbookv1.Side, amount, price, fee float64) {
	s := side.Sign()
	l.balances[m.Quote] += -s*amount*price - fee
	l.positions[m.Symbol] += amount * s
}

func copyMap(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
