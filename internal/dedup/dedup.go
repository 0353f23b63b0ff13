// Package dedup filters listings down to the ones this process has not seen yet.
package dedup

import (
	"sync"

	"sjsage522/partsfinder/internal/listing"
)

// SeenSet tracks every listing URL observed by one agent.
// URLs are never evicted; durable deduplication is the store's job.
type SeenSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewSeenSet creates an empty set
func NewSeenSet() *SeenSet {
	return &SeenSet{seen: make(map[string]struct{})}
}

// HasSeen reports whether url was observed before
func (s *SeenSet) HasSeen(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[url]
	return ok
}

// MarkSeen records url
func (s *SeenSet) MarkSeen(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[url] = struct{}{}
}

// FilterUnseen returns the items whose URL was not seen before, in input
// order, and marks them seen. Items without a URL are dropped.
func (s *SeenSet) FilterUnseen(items []listing.Listing) []listing.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []listing.Listing
	for _, item := range items {
		if item.URL == "" {
			continue
		}
		if _, ok := s.seen[item.URL]; ok {
			continue
		}
		s.seen[item.URL] = struct{}{}
		fresh = append(fresh, item)
	}
	return fresh
}

// Len returns the number of URLs seen
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
