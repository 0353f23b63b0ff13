package crawler

import (
	"context"
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

// firstPostStrategies locate the first post's body so that navigation,
// sidebar and signature text are not searched for prices
var firstPostStrategies = []selectionStrategy{
	func(doc *goquery.Document) *goquery.Selection { return doc.Find(`div[id^="post_message_"]`).First() },
	func(doc *goquery.Document) *goquery.Selection { return doc.Find("div.postcontent").First() },
	func(doc *goquery.Document) *goquery.Selection { return doc.Find("blockquote.postcontent").First() },
}

// DetailFetcher fetches a thread page and extracts price and image from its first post
type DetailFetcher struct {
	BaseCrawler
}

// NewDetailFetcher creates a thread detail fetcher
func NewDetailFetcher(site Site, client *http.Client, headers http.Header) *DetailFetcher {
	return &DetailFetcher{
		BaseCrawler: newBaseCrawler(client, headers, site.Source()),
	}
}

// FetchDetails never fails: any error yields empty details
func (f *DetailFetcher) FetchDetails(ctx context.Context, threadURL string) ThreadDetails {
	doc, err := f.fetchDocument(ctx, threadURL)
	if err != nil {
		f.log.Debug().Err(err).Str("url", threadURL).Msg("Failed to extract thread details")
		return ThreadDetails{}
	}
	return ExtractDetails(doc, threadURL)
}

// ExtractDetails applies the price extractor and image selector to the
// first post of a parsed thread page, or to the whole page if no post
// body can be located.
func ExtractDetails(doc *goquery.Document, pageURL string) ThreadDetails {
	region := firstMatch(doc, firstPostStrategies)
	if region == nil {
		region = doc.Selection
	}

	var details ThreadDetails
	if price, ok := ExtractPrice(region.Text()); ok {
		details.Price = price
	}
	if image, ok := SelectImage(doc.Selection, region, pageURL); ok {
		details.Image = image
	}
	return details
}
