// Package script replays orders declared in a YAML scenario file against a
// simulated venue.
package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	marketv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/market/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
)

// ErrScenario is returned when a scenario file cannot be read or parsed.
var ErrScenario = errors.New(errors.ScenarioError, errors.SeverityHigh, errors.CategoryValidation, "invalid scenario")

// Action is what a scripted order does when its decision time comes.
type Action string

const (
	ActionMarket Action = "market"
	ActionLimit  Action = "limit"
	ActionCancel Action = "cancel"
	ActionModify Action = "modify"
)

// Scenario declares the venue setup and the orders of a scripted run.
type Scenario struct {
	// Venue overrides the configured venue name when set.
	Venue    string             `yaml:"venue"`
	Markets  []marketv1.Market  `yaml:"markets"`
	Balances map[string]float64 `yaml:"balances"`
	Orders   []ScriptedOrder    `yaml:"orders"`
}

// ScriptedOrder is one strategy decision. At is the decision time in Unix
// nanoseconds; orders must be listed in non-decreasing At.
type ScriptedOrder struct {
	// Ref names the order so that later cancels and modifies can target it.
	Ref       string   `yaml:"ref"`
	At        int64    `yaml:"at"`
	Action    Action   `yaml:"action"`
	Symbol    string   `yaml:"symbol"`
	Side      string   `yaml:"side"`
	Amount    float64  `yaml:"amount"`
	Price     float64  `yaml:"price"`
	Target    string   `yaml:"target"`
	// NewPrice and NewAmount are the modify fields; at least one is set.
	NewPrice  *float64 `yaml:"new_price"`
	NewAmount *float64 `yaml:"new_amount"`
}

// Load reads and validates the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrScenario.Errorf("read %s: %v", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, ErrScenario.Errorf("decode: %v", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate collects every problem of the scenario.
func (s *Scenario) Validate() error {
	base := errors.NewBaseError()
	code := string(errors.ScenarioError)

	if len(s.Markets) == 0 {
		base.AddErrorDetails(errors.NewErrorDetails("at least one market is required", code, "markets"))
	}
	symbols := make(map[string]bool, len(s.Markets))
	for i, m := range s.Markets {
		field := fmt.Sprintf("markets[%d]", i)
		if m.Symbol == "" || m.Base == "" || m.Quote == "" {
			base.AddErrorDetails(errors.NewErrorDetailsWithObject("symbol, base and quote are required", code, field, m))
			continue
		}
		symbols[m.Symbol] = true
	}

	for currency, amount := range s.Balances {
		if amount < 0 {
			base.AddErrorDetails(errors.NewErrorDetails("balance must not be negative", code, "balances."+currency))
		}
	}

	refs := make(map[string]bool, len(s.Orders))
	placed := make(map[string]bool, len(s.Orders))
	var last int64
	for i, o := range s.Orders {
		field := fmt.Sprintf("orders[%d]", i)
		if o.At < last {
			base.AddErrorDetails(errors.NewErrorDetails("orders must be sorted by decision time", code, field+".at"))
		}
		last = o.At

		if !symbols[o.Symbol] {
			base.AddErrorDetails(errors.NewErrorDetails("unknown market "+o.Symbol, code, field+".symbol"))
		}

		switch o.Action {
		case ActionMarket, ActionLimit:
			if _, ok := orderbookv1.ParseSide(o.Side); !ok {
				base.AddErrorDetails(errors.NewErrorDetails("side must be buy or sell", code, field+".side"))
			}
			if o.Amount <= 0 {
				base.AddErrorDetails(errors.NewErrorDetails("amount must be positive", code, field+".amount"))
			}
			if o.Action == ActionLimit && o.Price <= 0 {
				base.AddErrorDetails(errors.NewErrorDetails("limit price must be positive", code, field+".price"))
			}
		case ActionCancel, ActionModify:
			if !placed[o.Target] {
				base.AddErrorDetails(errors.NewErrorDetails("target must name an earlier market or limit order", code, field+".target"))
			}
			if o.Action == ActionModify && o.NewPrice == nil && o.NewAmount == nil {
				base.AddErrorDetails(errors.NewErrorDetails("modify needs new_price or new_amount", code, field))
			}
		default:
			base.AddErrorDetails(errors.NewErrorDetails("unknown action "+string(o.Action), code, field+".action"))
		}

		if o.Ref != "" {
			if refs[o.Ref] {
				base.AddErrorDetails(errors.NewErrorDetails("duplicate ref "+o.Ref, code, field+".ref"))
			}
			refs[o.Ref] = true
			if o.Action == ActionMarket || o.Action == ActionLimit {
				placed[o.Ref] = true
			}
		}
	}

	if base.HasDetails() {
		return base
	}
	return nil
}
