package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalError represents a generic internal error.
	GeneralInternalError ErrorCode = "general_internal_error"
	// GeneralValidationError represents a generic validation error.
	GeneralValidationError ErrorCode = "general_validation_error"

	// InsufficientBalance is raised when an order fails balance admission.
	InsufficientBalance ErrorCode = "insufficient_balance"
	// OrderNotFound is raised when a cancel or modify targets an order that is not resting.
	OrderNotFound ErrorCode = "order_not_found"
	// CrossesOwnOrder is raised when a resting order would cross the trader's own opposite side.
	CrossesOwnOrder ErrorCode = "crosses_own_order"
	// NoMarketData is raised when a taker order arrives before any top of book is known.
	NoMarketData ErrorCode = "no_market_data"
	// InvalidEventOrdering is raised when the timeline yields a timestamp behind the clock.
	InvalidEventOrdering ErrorCode = "invalid_event_ordering"
	// UnknownEventKind is raised when dispatch receives an event variant it cannot handle.
	UnknownEventKind ErrorCode = "unknown_event_kind"
	// TimelineEmpty is raised when an event is popped from an empty timeline.
	TimelineEmpty ErrorCode = "timeline_empty"

	// UnknownMarket is returned when an API call names a symbol that was never registered.
	UnknownMarket ErrorCode = "unknown_market"
	// InvalidOrder is returned when order parameters are rejected before scheduling.
	InvalidOrder ErrorCode = "invalid_order"
	// InvalidTickSize is returned when a tick size is not a positive decimal.
	InvalidTickSize ErrorCode = "invalid_tick_size"
	// PriceOutOfRange is returned when a price has no int64 tick representation.
	PriceOutOfRange ErrorCode = "price_out_of_range"
	// InvalidSettlementMode is returned when the settlement mode is neither spot nor derivative.
	InvalidSettlementMode ErrorCode = "invalid_settlement_mode"
	// SimulationStarted is returned when market data is loaded after the timeline was prepared.
	SimulationStarted ErrorCode = "simulation_started"

	// FeedLoadError represents an error while loading market data before a run.
	FeedLoadError ErrorCode = "feed_load_error"
	// HistoryStoreError represents an error while exporting balance history or trades.
	HistoryStoreError ErrorCode = "history_store_error"
	// SnapshotStoreError represents an error while storing or loading a run snapshot.
	SnapshotStoreError ErrorCode = "snapshot_store_error"
	// PublishError represents an error while publishing simulated fills.
	PublishError ErrorCode = "publish_error"
	// ScenarioError represents an invalid scenario file.
	ScenarioError ErrorCode = "scenario_error"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisDisconnectionError represents an error when disconnecting from Redis.
	RedisDisconnectionError ErrorCode = "redis_disconnection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisDelError represents an error when deleting a value from Redis.
	RedisDelError ErrorCode = "redis_del_error"
)

// Severity represents the severity level of an error.
type Severity string

const (
	// SeverityCritical marks an error that aborts the simulation run.
	SeverityCritical Severity = "critical"
	// SeverityHigh marks an infrastructure failure around the run.
	SeverityHigh Severity = "high"
	// SeverityLow marks an error that is reported and the run continues.
	SeverityLow Severity = "low"
)

// Category represents the category of an error.
type Category string

const (
	// CategoryDatabase indicates an error related to database operations.
	CategoryDatabase Category = "database"
	// CategoryNetwork indicates an error related to network operations.
	CategoryNetwork Category = "network"
	// CategoryValidation indicates an error related to validation of input data.
	CategoryValidation Category = "validation"
	// CategoryBusinessLogic indicates an error related to matching or settlement.
	CategoryBusinessLogic Category = "business_logic"
	// CategoryInvariant indicates a broken internal data-structure invariant.
	CategoryInvariant Category = "invariant"
)

// CodedError is a sentinel error carrying a code, a severity and a category.
// Several sentinels may share a code.
type CodedError struct {
	Code     ErrorCode
	Severity Severity
	Category Category
	Message  string
}

// New creates a CodedError.
func New(code ErrorCode, severity Severity, category Category, message string) *CodedError {
	return &CodedError{
		Code:     code,
		Severity: severity,
		Category: category,
		Message:  message,
	}
}

func (e *CodedError) Error() string {
	return e.Message
}

// Fatal reports whether the error must abort the run.
func (e *CodedError) Fatal() bool {
	return e.Severity == SeverityCritical
}

// Errorf wraps the coded error with additional context while keeping it matchable.
func (e *CodedError) Errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}

// CodeOf returns the code of the first CodedError in err's chain.
func CodeOf(err error) ErrorCode {
	var coded *CodedError
	if stderrors.As(err, &coded) {
		return coded.Code
	}
	return GeneralInternalError
}

// IsFatal reports whether err carries a critical CodedError. Errors without a
// code are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var coded *CodedError
	if stderrors.As(err, &coded) {
		return coded.Fatal()
	}
	return true
}

// BaseError is an `error` type containing an array of ErrorDetails.
type BaseError struct {
	details []*ErrorDetails
}

// NewBaseError create BaseError with ErrorDetails
func NewBaseError(details ...*ErrorDetails) *BaseError {
	return &BaseError{details: details}
}

// AddErrorDetails add more ErrorDetails to BaseError
func (b *BaseError) AddErrorDetails(errors ...*ErrorDetails) {
	b.details = append(b.details, errors...)
}

// GetDetails get array ErrorDetails on BaseError
func (b *BaseError) GetDetails() []*ErrorDetails {
	return b.details
}

// HasDetails reports whether any detail was collected.
func (b *BaseError) HasDetails() bool {
	return len(b.details) > 0
}

// Error implement error interface
func (b *BaseError) Error() string {
	buff := bytes.NewBufferString("")

	buff.WriteString("Error on\n")
	for _, err := range b.details {
		buff.WriteString("code: ")
		buff.WriteString(err.Code)
		buff.WriteString("; error: ")
		buff.WriteString(err.Error())
		buff.WriteString("; field: ")
		buff.WriteString(err.Field)
		buff.WriteString("; object: ")
		if err.Object != nil {
			buff.WriteString(reflect.TypeOf(err.Object).String())
		}
		buff.WriteString("\n")
	}

	return strings.TrimSpace(buff.String())
}

// PrependFields prepend all field on ErrorDetails with given prefix. Will skip ErrorDetail without field
func (b *BaseError) PrependFields(prefix string) {
	for _, d := range b.GetDetails() {
		if d.Field == "" {
			continue
		}
		d.Field = fmt.Sprintf("%s%s", prefix, d.Field)
	}
}

// IsAllExpectedCode check if all ErrorDetails code is expected from given codes
func (b *BaseError) IsAllExpectedCode(codes ...string) bool {
	if len(b.details) == 0 {
		return false
	}

	expectedCodes := map[string]bool{}
	for _, code := range codes {
		expectedCodes[code] = true
	}

	for _, d := range b.GetDetails() {
		if !expectedCodes[d.Code] {
			return false
		}
	}

	return true
}
