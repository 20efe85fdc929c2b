// Package latency provides the latency models used to delay trader actions.
package latency

import (
	"math"
	"math/rand"
	"time"

	latencyv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/latency/v1"
)

// Constant always returns the same latency.
type Constant struct {
	d time.Duration
}

var _ latencyv1.Model = (*Constant)(nil)

// NewConstant creates a constant model. Negative values are treated as zero.
func NewConstant(d time.Duration) *Constant {
	if d < 0 {
		d = 0
	}
	return &Constant{d: d}
}

// Estimate returns the configured latency.
func (c *Constant) Estimate() time.Duration {
	return c.d
}

// LogNormal draws mean * exp(N(0, sigma)) per call.
type LogNormal struct {
	mean  time.Duration
	sigma float64
	rng   *rand.Rand
}

var _ latencyv1.Model = (*LogNormal)(nil)

// NewLogNormal creates a log-normal model drawing from rng.
func NewLogNormal(mean time.Duration, sigma float64, rng *rand.Rand) *LogNormal {
	if mean < 0 {
		mean = 0
	}
	if sigma < 0 {
		sigma = -sigma
	}
	return &LogNormal{mean: mean, sigma: sigma, rng: rng}
}

// NewLogNormalWithSeed creates a log-normal model with its own seeded source,
// so two runs with the same seed draw the same latencies.
func NewLogNormalWithSeed(mean time.Duration, sigma float64, seed int64) *LogNormal {
	return NewLogNormal(mean, sigma, rand.New(rand.NewSource(seed)))
}

// Estimate draws a latency sample. Draws beyond the range of time.Duration
// saturate at its maximum.
func (l *LogNormal) Estimate() time.Duration {
	if l.mean == 0 {
		return 0
	}
	factor := math.Exp(l.rng.NormFloat64() * l.sigma)
	d := float64(l.mean) * factor
	if d >= math.MaxInt64 || math.IsNaN(d) {
		return math.MaxInt64
	}
	return time.Duration(d)
}

// New builds a model by kind, "constant" or "lognormal".
func New(kind string, mean time.Duration, sigma float64, seed int64) latencyv1.Model {
	if kind == "lognormal" {
		return NewLogNormalWithSeed(mean, sigma, seed)
	}
	return NewConstant(mean)
}
