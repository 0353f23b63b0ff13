// Package store persists found listings so the dashboard can browse them.
package store

import (
	"context"

	"sjsage522/partsfinder/internal/listing"
)

// Stats summarizes the unarchived listings
type Stats struct {
	TotalItems int `json:"total_items"`
	Sources    int `json:"sources"`
}

// CategoryCount is the number of unarchived listings in a category
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Store represents the durable listing store. URL is unique; adding a
// listing whose URL is already stored is a no-op.
type Store interface {
	// Init creates the schema if needed
	Init(ctx context.Context) error

	// AddItem inserts a listing if its URL is new and reports whether it was
	AddItem(ctx context.Context, item listing.Listing) (bool, error)

	// AddItems inserts listings and returns how many were new
	AddItems(ctx context.Context, items []listing.Listing) (int, error)

	// GetItems returns listings newest first
	GetItems(ctx context.Context, limit, offset int, archived bool) ([]listing.Listing, error)

	// GetRecentItems returns unarchived listings found in the last hours
	GetRecentItems(ctx context.Context, hours, limit int) ([]listing.Listing, error)

	// SearchItems matches query against title and keyword
	SearchItems(ctx context.Context, query string, limit int) ([]listing.Listing, error)

	// ArchiveItem hides a listing from the default views
	ArchiveItem(ctx context.Context, id int64) error

	// GetStats counts unarchived listings and their sources
	GetStats(ctx context.Context) (Stats, error)

	// GetItemsByCategory returns listings of one category newest first
	GetItemsByCategory(ctx context.Context, category string, limit, offset int, archived bool) ([]listing.Listing, error)

	// GetCategoryStats counts unarchived listings per category, largest first
	GetCategoryStats(ctx context.Context) ([]CategoryCount, error)

	// Close releases the underlying connection pool
	Close() error
}
