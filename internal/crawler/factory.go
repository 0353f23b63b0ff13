package crawler

import (
	"sjsage522/partsfinder/config"
	"sjsage522/partsfinder/helpers"
	"sjsage522/partsfinder/services/cache"
)

// CreateSectionScraper wires the M3Post listing fetcher, section cache and
// detail fetcher from the configuration
func CreateSectionScraper(cfg *config.Config, cacheSvc cache.CacheService) *SectionScraper {
	listingFetcher := NewListingFetcher(M3Post, helpers.NewClient(cfg.HTTPTimeout), nil)
	sectionCache := NewSectionCache(listingFetcher, cacheSvc, M3Post.Name, cfg.SectionCacheTTL, cfg.PageDelay)
	details := NewDetailFetcher(M3Post, helpers.NewClient(cfg.DetailTimeout), nil)
	return NewSectionScraper(M3Post, sectionCache, details, cfg.ThreadDelay)
}

// CreateForumSearcher creates the keyword searcher over the generic forums
func CreateForumSearcher(cfg *config.Config) *ForumSearcher {
	return NewForumSearcher(GenericForums, helpers.NewClient(cfg.HTTPTimeout), nil, 20, cfg.SourceDelay)
}
