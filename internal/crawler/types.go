package crawler

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/partsfinder/internal/listing"
)

// Site describes a vBulletin-style forum
type Site struct {
	Name      string // short name used in source labels, e.g. "m3post"
	BaseURL   string // scheme and host, no trailing slash
	ForumPath string // path prefix of the forum engine, e.g. "/forums"
}

// M3Post is the forum whose sections are scraped page by page
var M3Post = Site{
	Name:      "m3post",
	BaseURL:   "https://www.m3post.com",
	ForumPath: "/forums",
}

// Source returns the source label stored with listings from this site
func (s Site) Source() string {
	return "forum:" + s.Name
}

// ListingURL returns the thread index URL of a section page (1-based)
func (s Site) ListingURL(forumID, page int) string {
	return fmt.Sprintf("%s%s/forumdisplay.php?f=%d&order=desc&page=%d", s.BaseURL, s.ForumPath, forumID, page)
}

// absolute resolves a link found on a listing page. Bare relative links are
// relative to the forum directory, not the site root.
func (s Site) absolute(raw string) string {
	switch {
	case strings.HasPrefix(raw, "http"):
		return raw
	case strings.HasPrefix(raw, "/"):
		return s.BaseURL + raw
	default:
		return s.BaseURL + s.ForumPath + "/" + raw
	}
}

// ThreadDetails holds what could be extracted from a thread's first post.
// Empty strings mean "not found".
type ThreadDetails struct {
	Price string
	Image string
}

// PageFetcher fetches one page of a section's thread index
type PageFetcher interface {
	FetchListingPage(ctx context.Context, forumID, page int) []listing.ThreadRef
}

// ThreadLister returns the merged thread list of a section
type ThreadLister interface {
	GetThreads(ctx context.Context, forumID, pages int) []listing.ThreadRef
}

// DetailSource fetches price and image details for a thread
type DetailSource interface {
	FetchDetails(ctx context.Context, threadURL string) ThreadDetails
}

// selectionStrategy is one step of a selector fallback chain. An empty
// selection means "no match" and the next strategy is tried.
type selectionStrategy func(doc *goquery.Document) *goquery.Selection

// firstMatch runs strategies in order and returns the first non-empty selection
func firstMatch(doc *goquery.Document, strategies []selectionStrategy) *goquery.Selection {
	for _, strategy := range strategies {
		if sel := strategy(doc); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}
