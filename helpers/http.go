package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	scrapeerrors "sjsage522/partsfinder/pkg/errors"
)

// BrowserUserAgent is sent on every forum request; forums block bot user agents.
const BrowserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var defaultBrowserHeaders = map[string]string{
	"User-Agent":      BrowserUserAgent,
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

// NewClient returns an HTTP client with a fixed timeout
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// BrowserHeaders merges caller headers over the browser defaults.
// A caller-supplied User-Agent is ignored.
func BrowserHeaders(extra http.Header) http.Header {
	h := make(http.Header, len(defaultBrowserHeaders)+len(extra))
	for k, v := range defaultBrowserHeaders {
		h.Set(k, v)
	}
	for k, values := range extra {
		if strings.EqualFold(k, "User-Agent") {
			continue
		}
		h.Del(k)
		for _, v := range values {
			h.Add(k, v)
		}
	}
	return h
}

// FetchPage sends a GET request with the given headers, converts the response
// body to UTF-8 (if needed), and returns it as an io.Reader.
func FetchPage(ctx context.Context, client *http.Client, url string, headers http.Header) (io.Reader, error) {
	source := Host(url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, scrapeerrors.NewNetwork(source, "failed to create request", err)
	}
	for k, values := range headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, scrapeerrors.NewNetwork(source, "failed to fetch URL", err)
	}
	defer resp.Body.Close()

	// Check for rate limiting
	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		return nil, scrapeerrors.NewRateLimit(source, resp.Header.Get("Retry-After"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, scrapeerrors.NewStatus(source, resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, scrapeerrors.NewNetwork(source, "failed to read response body", err)
	}

	// Determine the encoding from Content-Type header and body content
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, resp.Header.Get("Content-Type"))
	if strings.EqualFold(name, "utf-8") {
		return bytes.NewReader(bodyBytes), nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, scrapeerrors.NewParsing(source, fmt.Sprintf("failed to convert %s body to UTF-8", name), err)
	}

	return &buf, nil
}

// Sleep pauses for d or until ctx is done. It reports whether the full delay elapsed.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
