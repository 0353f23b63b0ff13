package crawler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/partsfinder/helpers"
	"sjsage522/partsfinder/internal/category"
	"sjsage522/partsfinder/internal/listing"
	"sjsage522/partsfinder/logger"
)

// ContactPrice stands in for a missing price on keyword search results
const ContactPrice = "Contact"

// GenericForum is a forum searched through its own search page
type GenericForum struct {
	Name           string
	BaseURL        string
	SearchEndpoint string
}

// GenericForums are searched by keyword every cycle
var GenericForums = []GenericForum{
	{Name: "e90post", BaseURL: "https://www.e90post.com", SearchEndpoint: "/forums/search/"},
	{Name: "m3cutters", BaseURL: "https://www.m3cutters.com", SearchEndpoint: "/forum/search.php"},
	{Name: "bimmerpost", BaseURL: "https://www.bimmerpost.com", SearchEndpoint: "/forums/search/"},
}

const (
	searchRowSelector   = "tr.alt1, tr.alt2, div.post, article, li.searchresult"
	searchTitleSelector = "a[href*='showthread'], a[href*='viewtopic'], h3 a, .title a"
)

// ForumSearcher runs keyword searches against generic forums. Unlike the
// section scraper it keeps results without a price, using ContactPrice.
type ForumSearcher struct {
	BaseCrawler
	Forums      []GenericForum
	MaxResults  int
	sourceDelay time.Duration
}

// NewForumSearcher creates a keyword searcher over forums
func NewForumSearcher(forums []GenericForum, client *http.Client, headers http.Header, maxResults int, sourceDelay time.Duration) *ForumSearcher {
	if maxResults <= 0 {
		maxResults = 20
	}
	return &ForumSearcher{
		BaseCrawler: newBaseCrawler(client, headers, "forums"),
		Forums:      forums,
		MaxResults:  maxResults,
		sourceDelay: sourceDelay,
	}
}

// Name identifies the searcher in agent logs
func (s *ForumSearcher) Name() string {
	return "forums"
}

// Search queries every forum for keyword and returns at most MaxResults listings
func (s *ForumSearcher) Search(ctx context.Context, keyword string) ([]listing.Listing, error) {
	if len(s.Forums) == 0 {
		return nil, nil
	}
	perForum := s.MaxResults/len(s.Forums) + 2

	var results []listing.Listing
	for i, forum := range s.Forums {
		if i > 0 && !helpers.Sleep(ctx, s.sourceDelay) {
			break
		}
		results = append(results, s.SearchForum(ctx, forum, keyword, perForum)...)
	}

	if len(results) > s.MaxResults {
		results = results[:s.MaxResults]
	}
	return results, nil
}

// SearchForum runs one forum's search page; failures yield no results
func (s *ForumSearcher) SearchForum(ctx context.Context, forum GenericForum, keyword string, maxResults int) []listing.Listing {
	searchURL := strings.TrimRight(forum.BaseURL, "/") + forum.SearchEndpoint + "?" + url.Values{"q": {keyword}}.Encode()

	doc, err := s.fetchDocument(ctx, searchURL)
	if err != nil {
		logger.ForSource("forum:"+forum.Name).Debug().Err(err).Str("keyword", keyword).Msg("Forum search error")
		return nil
	}
	return ParseSearchResults(doc, forum, keyword, maxResults)
}

// ParseSearchResults maps a search result page to listings
func ParseSearchResults(doc *goquery.Document, forum GenericForum, keyword string, maxResults int) []listing.Listing {
	base := strings.TrimRight(forum.BaseURL, "/")

	var items []listing.Listing
	doc.Find(searchRowSelector).EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i >= maxResults {
			return false
		}

		titleEl := row.Find(searchTitleSelector).First()
		if titleEl.Length() == 0 {
			return true
		}

		title := strings.Join(strings.Fields(titleEl.Text()), " ")
		threadURL := strings.TrimSpace(titleEl.AttrOr("href", ""))
		if threadURL == "" {
			return true
		}
		if !strings.HasPrefix(threadURL, "http") {
			threadURL = base + "/" + strings.TrimLeft(threadURL, "/")
		}
		threadURL = CanonicalLink(threadURL)

		price, ok := ExtractPrice(title)
		if !ok {
			price = ContactPrice
		}

		items = append(items, listing.Listing{
			Source:   "forum:" + forum.Name,
			Title:    title,
			Price:    price,
			URL:      threadURL,
			Keyword:  keyword,
			Category: category.Classify(title + " " + keyword),
		})
		return true
	})
	return items
}
