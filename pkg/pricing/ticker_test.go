package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
)

func TestNewTicker(t *testing.T) {
	testCases := []struct {
		name    string
		size    string
		wantErr bool
	}{
		{name: "cent", size: "0.01"},
		{name: "default", size: DefaultTickSize},
		{name: "garbage", size: "abc", wantErr: true},
		{name: "zero", size: "0", wantErr: true},
		{name: "negative", size: "-0.5", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTicker(tc.size)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTickSize)
				assert.Equal(t, errors.InvalidTickSize, errors.CodeOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTicks(t *testing.T) {
	ticker, err := NewTicker("0.01")
	require.NoError(t, err)

	testCases := []struct {
		price float64
		want  int64
	}{
		{price: 100.0, want: 10000},
		{price: 100.005, want: 10001},
		{price: 0.3, want: 30},
		{price: 0.1 + 0.2, want: 30},
	}
	for _, tc := range testCases {
		got, err := ticker.ToTicks(tc.price)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	assert.Equal(t, 100.01, ticker.FromTicks(10001))
	assert.Equal(t, 100.005, ticker.Mid(10000, 10001))
	assert.Equal(t, 200.0, ticker.Notional(2, 10000))
	assert.Equal(t, "0.01", ticker.TickSize())
}

func TestToTicksOutOfRange(t *testing.T) {
	ticker := MustTicker(DefaultTickSize)

	got, err := ticker.ToTicks(9.2e10)
	require.NoError(t, err)
	assert.Equal(t, int64(9_200_000_000_000_000_000), got)

	for _, price := range []float64{9.3e10, -9.3e10, 1e300, math.Inf(1), math.NaN()} {
		_, err := ticker.ToTicks(price)
		assert.ErrorIs(t, err, ErrPriceOutOfRange, "price %g", price)
		assert.Equal(t, errors.PriceOutOfRange, errors.CodeOf(err))
	}
}

func TestMustTickerPanics(t *testing.T) {
	assert.Panics(t, func() { MustTicker("nope") })
}
