package latencyv1

import "time"

// Model estimates the delay between a trader decision and its arrival at the venue.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=latencyv1_mock
type Model interface {
	// Estimate returns a non-negative latency. Each call may draw a new sample.
	Estimate() time.Duration
}
