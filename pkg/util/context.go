package util

import (
	"context"
)

type key string

const (
	runIDKey   = key("run-id")
	venueKey   = key("venue")
	eventIDKey = key("event-id")
)

// FieldsFromContext extracts the simulator's logging fields from a context.
type FieldsFromContext struct{}

// Fields returns a map of the key-value pairs that this library has set into `context`.
func (f *FieldsFromContext) Fields(ctx context.Context) map[string]interface{} {
	mapFields := make(map[string]interface{})
	mapFields["run_id"] = GetRunID(ctx)
	if venue := GetVenue(ctx); venue != "" {
		mapFields["venue"] = venue
	}

	return mapFields
}

// WithVenue returns a context carrying the venue name.
func WithVenue(ctx context.Context, venue string) context.Context {
	return context.WithValue(ctx, venueKey, venue)
}

// WithEventID returns a context with event id
func WithEventID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, eventIDKey, id)
}

// GetVenue returns the venue name from context, empty if not present.
func GetVenue(ctx context.Context) string {
	v, _ := ctx.Value(venueKey).(string)
	return v
}

// GetEventID returns event id from context
// will return empty string if not present
func GetEventID(ctx context.Context) string {
	id, _ := ctx.Value(eventIDKey).(string)
	return id
}
