package crawler

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/partsfinder/internal/listing"
)

const minTitleLength = 5

// paginationLabels are link texts of page controls, never thread titles
var paginationLabels = map[string]struct{}{
	"«": {}, "»": {}, "Previous": {}, "Next": {}, "First": {}, "Last": {},
}

// threadLinkStrategies locate thread title links, most specific first
var threadLinkStrategies = []selectionStrategy{
	// vBulletin 3.x: thread title links have id="thread_title_XXXX"
	func(doc *goquery.Document) *goquery.Selection { return doc.Find(`a[id^="thread_title_"]`) },
	// links inside the threads table
	func(doc *goquery.Document) *goquery.Selection { return doc.Find(`#threadslist a[href*="showthread.php"]`) },
	// any thread link on the page
	func(doc *goquery.Document) *goquery.Selection { return doc.Find(`a[href*="showthread.php"]`) },
}

// ListingFetcher reads one page of a section's thread index
type ListingFetcher struct {
	BaseCrawler
	Site Site
}

// NewListingFetcher creates a listing page fetcher for site
func NewListingFetcher(site Site, client *http.Client, headers http.Header) *ListingFetcher {
	return &ListingFetcher{
		BaseCrawler: newBaseCrawler(client, headers, site.Source()),
		Site:        site,
	}
}

// FetchListingPage returns the threads of one section page in page order.
// Failures are logged and yield an empty list.
func (f *ListingFetcher) FetchListingPage(ctx context.Context, forumID, page int) []listing.ThreadRef {
	url := f.Site.ListingURL(forumID, page)

	doc, err := f.fetchDocument(ctx, url)
	if err != nil {
		f.log.Warn().
			Err(err).
			Int("section", forumID).
			Int("page", page).
			Msg("Failed to fetch listing page")
		return nil
	}

	return f.ParseListing(doc)
}

// ParseListing extracts thread references from a parsed listing page
func (f *ListingFetcher) ParseListing(doc *goquery.Document) []listing.ThreadRef {
	links := firstMatch(doc, threadLinkStrategies)
	if links == nil {
		return nil
	}

	var threads []listing.ThreadRef
	seen := make(map[string]struct{})

	links.Each(func(_ int, link *goquery.Selection) {
		title := strings.Join(strings.Fields(link.Text()), " ")
		if utf8.RuneCountInString(title) < minTitleLength {
			return
		}
		if _, isControl := paginationLabels[title]; isControl {
			return
		}

		href := strings.TrimSpace(link.AttrOr("href", ""))
		if href == "" {
			return
		}

		canonical := f.Site.Canonicalize(f.Site.absolute(href))
		if _, dup := seen[canonical]; dup {
			return
		}
		seen[canonical] = struct{}{}

		threads = append(threads, listing.ThreadRef{Title: title, URL: canonical})
	})

	return threads
}
