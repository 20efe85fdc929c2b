// Package pricing converts between display prices and the integer tick
// representation used inside order books.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
)

var (
	ErrInvalidTickSize = errors.New(errors.InvalidTickSize, errors.SeverityLow, errors.CategoryValidation, "tick size must be a positive decimal")
	ErrPriceOutOfRange = errors.New(errors.PriceOutOfRange, errors.SeverityLow, errors.CategoryValidation, "price does not fit in int64 ticks")
)

var (
	minTicks = decimal.NewFromInt(math.MinInt64)
	maxTicks = decimal.NewFromInt(math.MaxInt64)
)

// Ticker converts prices for one tick size.
type Ticker struct {
	tick decimal.Decimal
}

// DefaultTickSize is used when no tick size is configured.
const DefaultTickSize = "0.00000001"

// NewTicker parses tickSize, for example "0.01".
func NewTicker(tickSize string) (*Ticker, error) {
	tick, err := decimal.NewFromString(tickSize)
	if err != nil {
		return nil, ErrInvalidTickSize.Errorf("%q: %v", tickSize, err)
	}
	if !tick.IsPositive() {
		return nil, ErrInvalidTickSize.Errorf("%q", tickSize)
	}
	return &Ticker{tick: tick}, nil
}

// MustTicker is NewTicker that panics on error.
func MustTicker(tickSize string) *Ticker {
	t, err := NewTicker(tickSize)
	if err != nil {
		panic(err)
	}
	return t
}

// ToTicks rounds price to the nearest tick. With the default tick size prices
// above about 9.2e10 do not fit and fail with ErrPriceOutOfRange.
func (t *Ticker) ToTicks(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, ErrPriceOutOfRange.Errorf("%g", price)
	}
	ticks := decimal.NewFromFloat(price).Div(t.tick).Round(0)
	if ticks.GreaterThan(maxTicks) || ticks.LessThan(minTicks) {
		return 0, ErrPriceOutOfRange.Errorf("%g with tick %s", price, t.tick)
	}
	return ticks.IntPart(), nil
}

// FromTicks converts ticks back to a display price.
func (t *Ticker) FromTicks(ticks int64) float64 {
	f, _ := decimal.NewFromInt(ticks).Mul(t.tick).Float64()
	return f
}

// Mid returns the display mid price of a bid and an ask given in ticks.
func (t *Ticker) Mid(bid, ask int64) float64 {
	f, _ := decimal.NewFromInt(bid + ask).Mul(t.tick).Div(decimal.NewFromInt(2)).Float64()
	return f
}

// Notional returns amount times price in quote units.
func (t *Ticker) Notional(amount float64, ticks int64) float64 {
	return amount * t.FromTicks(ticks)
}

// TickSize returns the tick size as a string.
func (t *Ticker) TickSize() string {
	return t.tick.String()
}
