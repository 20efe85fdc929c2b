package engine

import (
	latencyv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/latency/v1"
	"github.com/muhammadchandra19/exchange-simulator/internal/usecase/latency"
	"github.com/muhammadchandra19/exchange-simulator/internal/usecase/ledger"
	"github.com/muhammadchandra19/exchange-simulator/pkg/pricing"
)

// Options represents configuration options for the Engine.
type Options struct {
	// Venue names the simulated exchange in logs, snapshots and published fills.
	Venue string
	Mode  ledger.Mode
	// Fees in basis points of notional.
	TakerFeeBps float64
	MakerFeeBps float64
	TickSize    string
	Latency     latencyv1.Model
	// OnRejection is called for every non-fatal error raised inside a step.
	OnRejection func(Rejection)
	// DisableHistory stops the per-step balance snapshots.
	DisableHistory bool
}

// DefaultEngineOptions returns the default engine options.
func DefaultEngineOptions() *Options {
	return &Options{
		Venue:       "sim",
		Mode:        ledger.ModeSpot,
		TakerFeeBps: 2,
		MakerFeeBps: 0,
		TickSize:    pricing.DefaultTickSize,
		Latency:     latency.NewConstant(0),
	}
}
