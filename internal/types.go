package internal

import (
	"errors"

	"sjsage522/partsfinder/services/cache"
	"sjsage522/partsfinder/services/notifier"
	"sjsage522/partsfinder/services/store"
)

// Dependencies holds all service dependencies
type Dependencies struct {
	Cache     cache.CacheService
	Store     store.Store
	Notifiers []notifier.Notifier
}

type closer interface {
	Close() error
}

// Close releases the store and any notifier holding a connection
func (d *Dependencies) Close() error {
	var errs []error
	if d.Store != nil {
		errs = append(errs, d.Store.Close())
	}
	for _, n := range d.Notifiers {
		if c, ok := n.(closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
