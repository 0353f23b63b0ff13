package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/partsfinder/helpers"
	"sjsage522/partsfinder/logger"
	scrapeerrors "sjsage522/partsfinder/pkg/errors"
)

// BaseCrawler provides the HTTP plumbing shared by the forum fetchers
type BaseCrawler struct {
	Client  *http.Client
	Headers http.Header
	log     *logger.Logger
}

func newBaseCrawler(client *http.Client, headers http.Header, source string) BaseCrawler {
	return BaseCrawler{
		Client:  client,
		Headers: helpers.BrowserHeaders(headers),
		log:     logger.ForSource(source),
	}
}

// fetchDocument fetches a page and parses it into a goquery document
func (c *BaseCrawler) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := helpers.FetchPage(ctx, c.Client, url, c.Headers)
	if err != nil {
		return nil, err
	}
	return c.createDocument(body, url)
}

// createDocument creates a goquery document from a reader
func (c *BaseCrawler) createDocument(reader io.Reader, url string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, scrapeerrors.NewParsing(helpers.Host(url), fmt.Sprintf("failed to parse %s", url), err)
	}
	return doc, nil
}
