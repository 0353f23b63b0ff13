// Package notifier delivers newly found listings to alert sinks.
package notifier

import (
	"context"

	"sjsage522/partsfinder/internal/listing"
)

// Notifier represents a sink for newly found listings
type Notifier interface {
	// Name identifies the sink in logs
	Name() string

	// SendItem delivers a single listing
	SendItem(ctx context.Context, item listing.Listing) error

	// SendItems delivers a batch of listings
	SendItems(ctx context.Context, items []listing.Listing) error
}

type runIDKey struct{}

// WithRunID attaches the agent run id to ctx so sinks can tag payloads
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID returns the run id attached to ctx, if any
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
