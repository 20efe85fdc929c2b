package orderbookv1

import (
	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
)

// Errors raised while a step is processed. Low severity errors are reported
// as rejections and the run continues; critical ones abort the run.
var (
	ErrInsufficientBalance  = errors.New(errors.InsufficientBalance, errors.SeverityLow, errors.CategoryBusinessLogic, "insufficient balance")
	ErrOrderNotFound        = errors.New(errors.OrderNotFound, errors.SeverityLow, errors.CategoryBusinessLogic, "order not found")
	ErrCrossesOwnOrder      = errors.New(errors.CrossesOwnOrder, errors.SeverityLow, errors.CategoryBusinessLogic, "order would cross own resting order")
	ErrNoMarketData         = errors.New(errors.NoMarketData, errors.SeverityLow, errors.CategoryBusinessLogic, "no top of book for market")
	ErrInvalidEventOrdering = errors.New(errors.InvalidEventOrdering, errors.SeverityCritical, errors.CategoryInvariant, "event timestamp is behind the engine clock")
	ErrUnknownEventKind     = errors.New(errors.UnknownEventKind, errors.SeverityCritical, errors.CategoryInvariant, "unknown event kind")
	ErrTimelineEmpty        = errors.New(errors.TimelineEmpty, errors.SeverityCritical, errors.CategoryInvariant, "timeline is empty")
)

// Errors returned synchronously by the engine API. The request is never scheduled.
var (
	ErrUnknownMarket     = errors.New(errors.UnknownMarket, errors.SeverityLow, errors.CategoryValidation, "unknown market")
	ErrInvalidAmount     = errors.New(errors.InvalidOrder, errors.SeverityLow, errors.CategoryValidation, "amount must be positive")
	ErrInvalidPrice      = errors.New(errors.InvalidOrder, errors.SeverityLow, errors.CategoryValidation, "price must be positive")
	ErrSimulationStarted = errors.New(errors.SimulationStarted, errors.SeverityLow, errors.CategoryValidation, "market data cannot be loaded after the simulation started")
)

// Book level errors. These indicate misuse of a level and are treated as fatal.
var (
	ErrNilOrder       = errors.New(errors.GeneralInternalError, errors.SeverityCritical, errors.CategoryInvariant, "order cannot be nil")
	ErrInvalidSize    = errors.New(errors.GeneralInternalError, errors.SeverityCritical, errors.CategoryInvariant, "size must be positive")
	ErrLevelMismatch  = errors.New(errors.GeneralInternalError, errors.SeverityCritical, errors.CategoryInvariant, "level cache mismatch")
	ErrDuplicateOrder = errors.New(errors.GeneralInternalError, errors.SeverityCritical, errors.CategoryInvariant, "order already resting")
)
