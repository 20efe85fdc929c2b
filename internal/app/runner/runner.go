// Package runner executes one simulation run end to end: venue setup, market
// data loading, the scripted strategy and the post-run exports.
package runner

import (
	"context"

	"github.com/muhammadchandra19/exchange-simulator/internal/app/engine"
	"github.com/muhammadchandra19/exchange-simulator/internal/app/script"
	feedv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/feed/v1"
	historyv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/history/v1"
	matchpublisherv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/match-publisher/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/exchange-simulator/internal/usecase/feed"
	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
	"github.com/muhammadchandra19/exchange-simulator/pkg/util"
)

// Dependencies are the collaborators of a run. Nil exports are skipped.
type Dependencies struct {
	Source    feedv1.Source
	History   historyv1.Repository
	Snapshots snapshotv1.Store
	Publisher matchpublisherv1.MatchPublisher
}

// Options select what a run loads and exports.
type Options struct {
	RunID  string
	Engine *engine.Options
	Query  feedv1.Query
	// IDSeed seeds the event ids of published fills.
	IDSeed int64
}

// Result summarises a finished run.
type Result struct {
	RunID      string
	Venue      string
	Steps      int64
	Orders     int
	Trades     int
	Rejections int
	// Unsubmitted counts scripted orders decided after the last market event.
	Unsubmitted int
	Balances    map[string]float64
	Positions   map[string]float64
	Exported    Exported
}

// Exported counts the records written by the exports.
type Exported struct {
	Snapshots int64
	Trades    int64
	Published int
	Stored    bool
}

// Runner runs a scenario against one simulated venue.
type Runner struct {
	options  Options
	scenario *script.Scenario
	deps     Dependencies
	logger   *logger.Logger
}

// NewRunner creates a new Runner.
func NewRunner(options Options, scenario *script.Scenario, deps Dependencies, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{
		options:  options,
		scenario: scenario,
		deps:     deps,
		logger:   log,
	}
}

// Run builds the venue, replays the market data with the scenario orders and
// exports the outcome. The returned engine stays inspectable after the run.
func (r *Runner) Run(ctx context.Context) (*engine.Engine, *Result, error) {
	ctx = util.WithRunID(ctx, r.options.RunID)
	runID := util.GetRunID(ctx)

	options := *r.options.Engine
	if r.scenario.Venue != "" {
		options.Venue = r.scenario.Venue
	}
	ctx = util.WithVenue(ctx, options.Venue)

	e, err := engine.NewEngineWithOptions(r.logger, &options)
	if err != nil {
		return nil, nil, errors.NewTracer("create engine").Wrap(err)
	}
	if err := r.scenario.Setup(e); err != nil {
		return nil, nil, err
	}

	if err := feed.NewLoader(r.deps.Source, r.logger).Load(ctx, e, r.options.Query); err != nil {
		return nil, nil, err
	}

	player := script.NewPlayer(e, r.scenario, r.logger)
	if err := e.RunSimulation(ctx, player); err != nil {
		return e, nil, err
	}
	if n := player.Remaining(); n > 0 {
		r.logger.WarnContext(ctx, "Scripted orders left after the last market event", logger.NewField("orders", n))
	}

	result := &Result{
		RunID:       runID,
		Venue:       e.Venue(),
		Steps:       e.Steps(),
		Orders:      len(e.Orders()),
		Trades:      len(e.Trades()),
		Rejections:  len(e.Rejections()),
		Unsubmitted: player.Remaining(),
		Balances:    e.Balances(),
		Positions:   e.Positions(),
	}

	exported, err := r.export(ctx, e, runID)
	result.Exported = exported
	if err != nil {
		return e, result, err
	}

	r.logger.InfoContext(ctx, "Run finished",
		logger.NewField("steps", result.Steps),
		logger.NewField("trades", result.Trades),
		logger.NewField("rejections", result.Rejections),
	)
	return e, result, nil
}

// export writes the history, the end-of-run snapshot and the fills. Every
// export is attempted; the first error is returned.
func (r *Runner) export(ctx context.Context, e *engine.Engine, runID string) (Exported, error) {
	var (
		out      Exported
		firstErr error
	)
	keep := func(err error) {
		if err == nil {
			return
		}
		r.logger.ErrorContext(ctx, err)
		if firstErr == nil {
			firstErr = err
		}
	}

	run := historyv1.Run{ID: runID, Venue: e.Venue()}

	if r.deps.History != nil {
		n, err := r.deps.History.StoreSnapshots(ctx, run, e.BalanceHistory())
		out.Snapshots = n
		keep(err)

		n, err = r.deps.History.StoreTrades(ctx, run, e.Trades())
		out.Trades = n
		keep(err)
	}

	if r.deps.Snapshots != nil {
		err := r.deps.Snapshots.Store(ctx, e.Snapshot(ctx))
		out.Stored = err == nil
		keep(err)
	}

	if r.deps.Publisher != nil {
		trades := e.Trades()
		ids := matchpublisherv1.NewIDSource(r.options.IDSeed)
		events := make([]*matchpublisherv1.MatchEvent, 0, len(trades))
		for _, trade := range trades {
			events = append(events, ids.CreateFromTrade(runID, e.Venue(), trade))
		}
		err := r.deps.Publisher.PublishMatchEvents(ctx, events)
		if err == nil {
			out.Published = len(events)
		}
		keep(err)
	}

	return out, firstErr
}
