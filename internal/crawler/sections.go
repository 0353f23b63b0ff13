package crawler

import (
	"context"
	"time"

	"sjsage522/partsfinder/helpers"
	"sjsage522/partsfinder/internal/category"
	"sjsage522/partsfinder/internal/listing"
	"sjsage522/partsfinder/logger"
)

// DefaultSections are the M3Post sub-forums scraped every cycle
var DefaultSections = []listing.Section{
	{ForumID: 277, Category: "Wheels", Label: "Wheels"},
	{ForumID: 182, Category: "", Label: "E9x M3 Parts"},
}

// SectionScraper walks forum sections and turns priced threads into listings
type SectionScraper struct {
	Site        Site
	threads     ThreadLister
	details     DetailSource
	threadDelay time.Duration
	log         *logger.Logger
}

// NewSectionScraper creates a section scraper
func NewSectionScraper(site Site, threads ThreadLister, details DetailSource, threadDelay time.Duration) *SectionScraper {
	return &SectionScraper{
		Site:        site,
		threads:     threads,
		details:     details,
		threadDelay: threadDelay,
		log:         logger.ForSource(site.Source()),
	}
}

// Collect grabs every thread from the first pages of each section, in
// section order. Threads without a price in the title or the first post
// are skipped. A failing section contributes nothing; the rest continue.
func (s *SectionScraper) Collect(ctx context.Context, sections []listing.Section, pages int) []listing.Listing {
	var items []listing.Listing
	emitted := make(map[string]struct{})
	fetched := 0

	for _, section := range sections {
		label := section.DisplayLabel()
		threads := s.threads.GetThreads(ctx, section.ForumID, pages)
		s.log.Info().
			Str("section", label).
			Int("forum_id", section.ForumID).
			Int("threads", len(threads)).
			Int("pages", pages).
			Msg("Section threads loaded")

		for _, thread := range threads {
			canonical := s.Site.Canonicalize(thread.URL)
			if _, dup := emitted[canonical]; dup {
				continue
			}
			emitted[canonical] = struct{}{}

			if fetched > 0 && !helpers.Sleep(ctx, s.threadDelay) {
				s.log.Info().Int("items", len(items)).Msg("Section scrape interrupted")
				return items
			}
			fetched++
			details := s.details.FetchDetails(ctx, canonical)

			price, ok := ExtractPrice(thread.Title)
			if !ok {
				price = details.Price
			}
			if price == "" {
				s.log.Debug().Str("title", thread.Title).Msg("Skipping (no price)")
				continue
			}

			cat := section.Category
			if cat == "" {
				cat = category.Classify(thread.Title)
			}

			items = append(items, listing.Listing{
				Source:   s.Site.Source(),
				Title:    thread.Title,
				Price:    price,
				URL:      canonical,
				Image:    details.Image,
				Keyword:  label,
				Category: cat,
			})
		}
	}

	s.log.Info().Int("items", len(items)).Msg("Sections total with prices")
	return items
}
