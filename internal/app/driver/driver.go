// Package driver runs several simulated venues on one clock. Each iteration
// the strategy is called once and then the venue whose next event is the
// earliest is stepped.
package driver

import (
	"context"

	"github.com/muhammadchandra19/exchange-simulator/internal/app/engine"
	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
)

var (
	ErrDuplicateVenue = errors.New(errors.GeneralValidationError, errors.SeverityLow, errors.CategoryValidation, "venue already registered")
	ErrNoVenues       = errors.New(errors.GeneralValidationError, errors.SeverityLow, errors.CategoryValidation, "no venue registered")
)

// Driver interleaves the timelines of several engines.
type Driver struct {
	logger  *logger.Logger
	engines []*engine.Engine
	byVenue map[string]*engine.Engine
	steps   map[string]int64
}

// NewDriver creates a driver over engines, in registration order.
func NewDriver(log *logger.Logger, engines ...*engine.Engine) (*Driver, error) {
	if log == nil {
		log = logger.NewNop()
	}
	d := &Driver{
		logger:  log,
		byVenue: make(map[string]*engine.Engine),
		steps:   make(map[string]int64),
	}
	for _, e := range engines {
		if err := d.Register(e); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Register adds a venue. Ties between venues go to the one registered first.
func (d *Driver) Register(e *engine.Engine) error {
	if _, ok := d.byVenue[e.Venue()]; ok {
		return ErrDuplicateVenue.Errorf("%s", e.Venue())
	}
	d.engines = append(d.engines, e)
	d.byVenue[e.Venue()] = e
	return nil
}

// Engine returns the engine of venue.
func (d *Driver) Engine(venue string) (*engine.Engine, bool) {
	e, ok := d.byVenue[venue]
	return e, ok
}

// Engines returns the venues in registration order.
func (d *Driver) Engines() []*engine.Engine {
	out := make([]*engine.Engine, len(d.engines))
	copy(out, d.engines)
	return out
}

// Next returns the venue holding the earliest pending event.
func (d *Driver) Next() (*engine.Engine, bool) {
	var (
		next   *engine.Engine
		nextTS int64
	)
	for _, e := range d.engines {
		ts, ok := e.PeekTimestamp()
		if !ok {
			continue
		}
		if next == nil || ts < nextTS {
			next, nextTS = e, ts
		}
	}
	return next, next != nil
}

// Done reports whether every venue is drained.
func (d *Driver) Done() bool {
	_, ok := d.Next()
	return !ok
}

// Now returns the latest clock over all venues.
func (d *Driver) Now() int64 {
	var now int64
	for _, e := range d.engines {
		if e.Now() > now {
			now = e.Now()
		}
	}
	return now
}

// Step advances the venue with the earliest pending event and returns its name.
func (d *Driver) Step(ctx context.Context) (string, error) {
	e, ok := d.Next()
	if !ok {
		return "", ErrNoVenues.Errorf("nothing left to step")
	}
	if err := e.Step(ctx); err != nil {
		return e.Venue(), errors.NewTracer("step " + e.Venue()).Wrap(err)
	}
	d.steps[e.Venue()]++
	return e.Venue(), nil
}

// Run calls strategy and then steps one venue until all are drained.
// A nil strategy only replays the venues.
func (d *Driver) Run(ctx context.Context, strategy engine.Strategy) error {
	if len(d.engines) == 0 {
		return ErrNoVenues
	}

	d.logger.InfoContext(ctx, "Cross-venue run started", logger.NewField("venues", len(d.engines)))

	for !d.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if strategy != nil {
			if err := strategy.RunStrategy(ctx); err != nil {
				return errors.NewTracer("run strategy").Wrap(err)
			}
		}

		if _, err := d.Step(ctx); err != nil {
			d.logger.ErrorContext(ctx, err, logger.NewField("clock", d.Now()))
			return err
		}
	}

	d.logger.InfoContext(ctx, "Cross-venue run finished", logger.NewField("steps", d.steps))
	return nil
}

// Steps returns the number of events processed per venue.
func (d *Driver) Steps() map[string]int64 {
	out := make(map[string]int64, len(d.steps))
	for venue, n := range d.steps {
		out[venue] = n
	}
	return out
}
