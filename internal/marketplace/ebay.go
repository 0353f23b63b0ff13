// Package marketplace searches listing sources that are not forums.
package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"sjsage522/partsfinder/internal/category"
	"sjsage522/partsfinder/internal/listing"
	"sjsage522/partsfinder/logger"
	scrapeerrors "sjsage522/partsfinder/pkg/errors"
)

const (
	ebaySource      = "ebay"
	ebayScope       = "https://api.ebay.com/oauth/api_scope"
	ebayItemURL     = "https://www.ebay.com/itm/"
	ebayQuerySuffix = " E9X M3"
)

// EbayAPIURLs maps EBAY_ENVIRONMENT values to API hosts
var EbayAPIURLs = map[string]string{
	"SANDBOX":    "https://api.sandbox.ebay.com",
	"PRODUCTION": "https://api.ebay.com",
}

// EbayClient searches eBay through the Browse API using an application
// token from the client credentials grant
type EbayClient struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	UserAgent    string
	MaxResults   int

	client *http.Client
	log    *logger.Logger

	mu     sync.Mutex
	tokens oauth2.TokenSource
}

// NewEbayClient creates a Browse API client for the given environment.
// Unknown environments fall back to production.
func NewEbayClient(clientID, clientSecret, environment string, client *http.Client, userAgent string) *EbayClient {
	baseURL, ok := EbayAPIURLs[strings.ToUpper(environment)]
	if !ok {
		baseURL = EbayAPIURLs["PRODUCTION"]
	}
	if userAgent == "" {
		userAgent = "M3PartsFinder/1.0"
	}
	return &EbayClient{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		BaseURL:      baseURL,
		UserAgent:    userAgent,
		MaxResults:   20,
		client:       client,
		log:          logger.ForSource(ebaySource),
	}
}

// Name identifies the source in agent logs
func (c *EbayClient) Name() string {
	return ebaySource
}

// Configured reports whether credentials are present
func (c *EbayClient) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// tokenSource returns the caching client credentials token source, creating
// it on first use. Token requests go through the client's HTTP client.
func (c *EbayClient) tokenSource() oauth2.TokenSource {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokens == nil {
		cfg := clientcredentials.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			TokenURL:     c.BaseURL + "/identity/oauth2/token",
			Scopes:       []string{ebayScope},
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.client)
		c.tokens = cfg.TokenSource(ctx)
	}
	return c.tokens
}

// dropToken forgets the cached token so the next search re-authenticates
func (c *EbayClient) dropToken() {
	c.mu.Lock()
	c.tokens = nil
	c.mu.Unlock()
}

func (c *EbayClient) accessToken() (string, error) {
	token, err := c.tokenSource().Token()
	if err != nil {
		return "", scrapeerrors.NewAuth(ebaySource, "authentication failed", err)
	}
	return token.AccessToken, nil
}

type browseResponse struct {
	ItemSummaries []itemSummary `json:"itemSummaries"`
}

type itemSummary struct {
	ItemID    string          `json:"itemId"`
	Title     string          `json:"title"`
	Price     *amount         `json:"price"`
	Image     json.RawMessage `json:"image"`
	Condition string          `json:"condition"`
}

type amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type imageRef struct {
	ImageURL string `json:"imageUrl"`
}

// imageURL accepts the image field as an object, a list of objects or a
// list of strings
func (s itemSummary) imageURL() string {
	if len(s.Image) == 0 {
		return ""
	}
	var single imageRef
	if err := json.Unmarshal(s.Image, &single); err == nil {
		return single.ImageURL
	}
	var refs []imageRef
	if err := json.Unmarshal(s.Image, &refs); err == nil && len(refs) > 0 {
		return refs[0].ImageURL
	}
	var urls []string
	if err := json.Unmarshal(s.Image, &urls); err == nil && len(urls) > 0 {
		return urls[0]
	}
	return ""
}

func (s itemSummary) toListing(keyword string) listing.Listing {
	title := s.Title
	if title == "" {
		title = "Unknown"
	}
	value, currency := "N/A", "USD"
	if s.Price != nil {
		if s.Price.Value != "" {
			value = s.Price.Value
		}
		if s.Price.Currency != "" {
			currency = s.Price.Currency
		}
	}
	condition := s.Condition
	if condition == "" {
		condition = "Unknown"
	}
	return listing.Listing{
		Source:    ebaySource,
		Title:     title,
		Price:     value + " " + currency,
		URL:       ebayItemURL + s.ItemID,
		Image:     s.imageURL(),
		Keyword:   keyword,
		Category:  category.Classify(title + " " + keyword),
		Condition: condition,
		ItemID:    s.ItemID,
	}
}

// Search returns the newest auction and fixed-price listings for keyword.
// Without credentials it logs a warning and returns nothing.
func (c *EbayClient) Search(ctx context.Context, keyword string) ([]listing.Listing, error) {
	if !c.Configured() {
		c.log.Warn().Msg("eBay API credentials not configured")
		return nil, nil
	}

	token, err := c.accessToken()
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"q":      {keyword + ebayQuerySuffix},
		"limit":  {strconv.Itoa(c.MaxResults)},
		"sort":   {"newlyListed"},
		"filter": {"buyingOptions:{AUCTION|FIXED_PRICE}"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/buy/browse/v1/item_summary/search?"+params.Encode(), nil)
	if err != nil {
		return nil, scrapeerrors.NewNetwork(ebaySource, "failed to create search request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Language", "en-US")
	req.Header.Set("User-Agent", c.UserAgent)

	var br browseResponse
	if err := c.doJSON(req, &br); err != nil {
		if scrapeerrors.Is(err, scrapeerrors.ErrorTypeStatus) {
			c.dropToken()
		}
		return nil, err
	}

	items := make([]listing.Listing, 0, len(br.ItemSummaries))
	for _, s := range br.ItemSummaries {
		items = append(items, s.toListing(keyword))
	}
	c.log.Info().Str("keyword", keyword).Int("results", len(items)).Msg("eBay search complete")
	return items, nil
}

// doJSON sends req and decodes a 2xx JSON body into out
func (c *EbayClient) doJSON(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return scrapeerrors.NewNetwork(ebaySource, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return scrapeerrors.NewRateLimit(ebaySource, resp.Header.Get("Retry-After"))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return scrapeerrors.NewStatus(ebaySource, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return scrapeerrors.NewParsing(ebaySource, fmt.Sprintf("invalid response from %s", req.URL.Path), err)
	}
	return nil
}
