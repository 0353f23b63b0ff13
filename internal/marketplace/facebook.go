package marketplace

import (
	"context"

	"sjsage522/partsfinder/internal/listing"
	"sjsage522/partsfinder/logger"
)

// Facebook stands in for Facebook Marketplace, which renders listings with
// JavaScript behind a login. It never returns results.
type Facebook struct {
	log *logger.Logger
}

// NewFacebook creates the placeholder source
func NewFacebook() *Facebook {
	return &Facebook{log: logger.ForSource("facebook")}
}

// Name identifies the source in agent logs
func (f *Facebook) Name() string {
	return "facebook"
}

// Search logs that the source is unavailable and returns nothing
func (f *Facebook) Search(ctx context.Context, keyword string) ([]listing.Listing, error) {
	f.log.Info().Str("keyword", keyword).Msg("Facebook Marketplace search not implemented")
	return nil, nil
}
