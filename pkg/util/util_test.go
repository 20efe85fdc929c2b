package util

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithRunID(t *testing.T) {
	t.Run("keeps given id", func(t *testing.T) {
		ctx := WithRunID(context.Background(), "run-1")
		assert.Equal(t, "run-1", GetRunID(ctx))
	})

	t.Run("generates id when empty", func(t *testing.T) {
		ctx := WithRunID(context.Background(), "")
		assert.Len(t, GetRunID(ctx), 36)
	})

	t.Run("missing id", func(t *testing.T) {
		assert.Empty(t, GetRunID(context.Background()))
	})
}

func TestFieldsFromContext(t *testing.T) {
	ctx := WithVenue(WithRunID(context.Background(), "abc"), "binance")
	fields := (&FieldsFromContext{}).Fields(ctx)
	assert.Equal(t, "abc", fields["run_id"])
	assert.Equal(t, "binance", fields["venue"])

	fields = (&FieldsFromContext{}).Fields(context.Background())
	_, ok := fields["venue"]
	assert.False(t, ok)
}

func TestTimeHelpers(t *testing.T) {
	ts := int64(1_700_000_000_123_456_789)
	assert.Equal(t, ts, TimeToNanos(NanosToTime(ts)))
	assert.Equal(t, int64(1_500_000), MicrosToNanos(1_500))
	assert.Equal(t, int64(1_010), AddLatency(1_000, 10*time.Nanosecond))

	testCases := []struct {
		name string
		ns   int64
		d    time.Duration
		want int64
	}{
		{name: "saturates high", ns: 1_700_000_000_000_000_000, d: time.Duration(math.MaxInt64), want: math.MaxInt64},
		{name: "saturates low", ns: -10, d: time.Duration(math.MinInt64), want: math.MinInt64},
		{name: "negative shift", ns: 1_000, d: -10 * time.Nanosecond, want: 990},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AddLatency(tc.ns, tc.d))
		})
	}

	p := Pointer(1.5)
	assert.Equal(t, 1.5, *p)
}
