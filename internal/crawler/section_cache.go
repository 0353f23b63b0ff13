package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"sjsage522/partsfinder/helpers"
	"sjsage522/partsfinder/internal/listing"
	"sjsage522/partsfinder/logger"
	"sjsage522/partsfinder/services/cache"
)

// DefaultCacheTTL is how long a section's thread list is served from cache
const DefaultCacheTTL = 300 * time.Second

type sectionEntry struct {
	Threads  []listing.ThreadRef `json:"threads"`
	CachedAt time.Time           `json:"cached_at"`
}

// SectionCache holds the merged thread list of each section for a short
// time so repeated cycles do not re-walk the listing pages.
type SectionCache struct {
	fetcher   PageFetcher
	store     cache.CacheService
	keyPrefix string
	ttl       time.Duration
	pageDelay time.Duration
	now       func() time.Time
	log       *logger.Logger

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// NewSectionCache creates a section cache backed by store
func NewSectionCache(fetcher PageFetcher, store cache.CacheService, keyPrefix string, ttl, pageDelay time.Duration) *SectionCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &SectionCache{
		fetcher:   fetcher,
		store:     store,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		pageDelay: pageDelay,
		now:       time.Now,
		log:       logger.ForCache(),
		locks:     make(map[int]*sync.Mutex),
	}
}

func (c *SectionCache) key(forumID int) string {
	return fmt.Sprintf("%s:section:%d", c.keyPrefix, forumID)
}

// sectionLock serializes fetches of the same section across overlapping runs
func (c *SectionCache) sectionLock(forumID int) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[forumID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[forumID] = l
	}
	return l
}

// GetThreads returns the cached thread list of a section while it is fresh,
// otherwise walks pages 1..pages and replaces the cache entry.
func (c *SectionCache) GetThreads(ctx context.Context, forumID, pages int) []listing.ThreadRef {
	lock := c.sectionLock(forumID)
	lock.Lock()
	defer lock.Unlock()

	now := c.now()
	if entry, ok := c.load(forumID); ok && len(entry.Threads) > 0 && now.Sub(entry.CachedAt) < c.ttl {
		c.log.Debug().Int("section", forumID).Int("threads", len(entry.Threads)).Msg("Using cached section threads")
		return entry.Threads
	}

	threads := c.fetchPages(ctx, forumID, pages)
	if ctx.Err() != nil {
		// a partial walk is not cached
		c.log.Info().Int("section", forumID).Int("threads", len(threads)).Msg("Section walk interrupted, not cached")
		return threads
	}
	c.save(forumID, sectionEntry{Threads: threads, CachedAt: now})

	c.log.Info().
		Int("section", forumID).
		Int("threads", len(threads)).
		Int("pages", pages).
		Msg("Cached section threads")
	return threads
}

// fetchPages merges pages in order, first occurrence of a URL wins.
// An empty page ends the walk.
func (c *SectionCache) fetchPages(ctx context.Context, forumID, pages int) []listing.ThreadRef {
	all := []listing.ThreadRef{}
	seen := make(map[string]struct{})

	for page := 1; page <= pages; page++ {
		pageThreads := c.fetcher.FetchListingPage(ctx, forumID, page)
		for _, t := range pageThreads {
			if _, dup := seen[t.URL]; dup {
				continue
			}
			seen[t.URL] = struct{}{}
			all = append(all, t)
		}
		c.log.Debug().Int("section", forumID).Int("page", page).Int("threads", len(pageThreads)).Msg("Fetched listing page")

		if len(pageThreads) == 0 {
			break
		}
		if page < pages && !helpers.Sleep(ctx, c.pageDelay) {
			break
		}
	}
	return all
}

func (c *SectionCache) load(forumID int) (sectionEntry, bool) {
	var entry sectionEntry
	data, err := c.store.Get(c.key(forumID))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.log.Warn().Err(err).Int("section", forumID).Msg("Section cache read failed")
		}
		return entry, false
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		c.log.Warn().Err(err).Int("section", forumID).Msg("Discarding unreadable section cache entry")
		return entry, false
	}
	return entry, true
}

func (c *SectionCache) save(forumID int, entry sectionEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		c.log.Warn().Err(err).Int("section", forumID).Msg("Failed to encode section cache entry")
		return
	}
	if err := c.store.Set(c.key(forumID), data, c.ttl); err != nil {
		c.log.Warn().Err(err).Int("section", forumID).Msg("Section cache write failed")
	}
}
