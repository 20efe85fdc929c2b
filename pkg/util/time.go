package util

import (
	"math"
	"time"
)

// Pointer returns a pointer to a copy of v.
func Pointer[T any](v T) *T {
	return &v
}

// NanosToTime converts a Unix nanosecond timestamp to UTC time.
func NanosToTime(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

// TimeToNanos converts t to a Unix nanosecond timestamp.
func TimeToNanos(t time.Time) int64 {
	return t.UnixNano()
}

// MicrosToNanos converts a Unix microsecond timestamp, as used by Tardis
// datasets, to nanoseconds.
func MicrosToNanos(us int64) int64 {
	return us * int64(time.Microsecond)
}

// AddLatency shifts a nanosecond timestamp by d, saturating at the int64
// range instead of wrapping.
func AddLatency(ns int64, d time.Duration) int64 {
	n := d.Nanoseconds()
	if n > 0 && ns > math.MaxInt64-n {
		return math.MaxInt64
	}
	if n < 0 && ns < math.MinInt64-n {
		return math.MinInt64
	}
	return ns + n
}
