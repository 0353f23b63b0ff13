package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/partsfinder/helpers"
	scrapeerrors "sjsage522/partsfinder/pkg/errors"
)

const browseFixture = `{
  "itemSummaries": [
    {
      "itemId": "v1|1234|0",
      "title": "BMW E92 M3 Carbon Fiber Spoiler",
      "price": {"value": "450.00", "currency": "USD"},
      "image": {"imageUrl": "https://i.ebayimg.com/images/g/abc/s-l1600.jpg"},
      "condition": "Used"
    },
    {
      "itemId": "v1|5678|0",
      "title": "E90 M3 seats",
      "image": [{"imageUrl": "https://i.ebayimg.com/images/g/def/s-l1600.jpg"}]
    },
    {
      "itemId": "v1|9999|0",
      "price": {"value": "10.00"}
    }
  ]
}`

type fakeEbay struct {
	expiresIn   int
	tokenCalls  atomic.Int32
	searchCalls atomic.Int32
	searchCode  int
	lastQuery   atomic.Value
}

func (f *fakeEbay) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/identity/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "id" || pass != "secret" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, ebayScope, r.PostForm.Get("scope"))
		expiresIn := f.expiresIn
		if expiresIn == 0 {
			expiresIn = 7200
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token": "tok", "token_type": "Application Access Token", "expires_in": %d}`, expiresIn)
	})
	mux.HandleFunc("/buy/browse/v1/item_summary/search", func(w http.ResponseWriter, r *http.Request) {
		f.searchCalls.Add(1)
		f.lastQuery.Store(r.URL.Query())
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if f.searchCode != 0 {
			http.Error(w, "nope", f.searchCode)
			return
		}
		w.Write([]byte(browseFixture))
	})
	return mux
}

func newTestEbay(t *testing.T, fake *fakeEbay, id, secret string) *EbayClient {
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	c := NewEbayClient(id, secret, "sandbox", helpers.NewClient(5*time.Second), "")
	assert.Equal(t, EbayAPIURLs["SANDBOX"], c.BaseURL)
	c.BaseURL = server.URL
	return c
}

func TestEbaySearch(t *testing.T) {
	fake := &fakeEbay{}
	c := newTestEbay(t, fake, "id", "secret")

	items, err := c.Search(context.Background(), "spoiler")
	require.NoError(t, err)
	require.Len(t, items, 3)

	query := fake.lastQuery.Load().(url.Values)
	assert.Equal(t, []string{"spoiler E9X M3"}, query["q"])
	assert.Equal(t, []string{"20"}, query["limit"])
	assert.Equal(t, []string{"newlyListed"}, query["sort"])
	assert.Equal(t, []string{"buyingOptions:{AUCTION|FIXED_PRICE}"}, query["filter"])

	first := items[0]
	assert.Equal(t, "ebay", first.Source)
	assert.Equal(t, "450.00 USD", first.Price)
	assert.Equal(t, "https://www.ebay.com/itm/v1|1234|0", first.URL)
	assert.Equal(t, "https://i.ebayimg.com/images/g/abc/s-l1600.jpg", first.Image)
	assert.Equal(t, "Used", first.Condition)
	assert.Equal(t, "v1|1234|0", first.ItemID)
	assert.Equal(t, "Exterior", first.Category)
	assert.Equal(t, "spoiler", first.Keyword)

	assert.Equal(t, "N/A USD", items[1].Price)
	assert.Equal(t, "https://i.ebayimg.com/images/g/def/s-l1600.jpg", items[1].Image)
	assert.Equal(t, "Unknown", items[1].Condition)

	assert.Equal(t, "Unknown", items[2].Title)
	assert.Equal(t, "10.00 USD", items[2].Price)
	assert.Empty(t, items[2].Image)

	// the token is reused while valid
	_, err = c.Search(context.Background(), "seats")
	require.NoError(t, err)
	assert.Equal(t, int32(1), fake.tokenCalls.Load())
	assert.Equal(t, int32(2), fake.searchCalls.Load())
}

func TestEbayTokenExpiry(t *testing.T) {
	// a token this short-lived is already inside the refresh window
	fake := &fakeEbay{expiresIn: 5}
	c := newTestEbay(t, fake, "id", "secret")

	_, err := c.Search(context.Background(), "hood")
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "hood")
	require.NoError(t, err)
	assert.Equal(t, int32(2), fake.tokenCalls.Load())
	assert.Equal(t, int32(2), fake.searchCalls.Load())
}

func TestEbayMissingCredentials(t *testing.T) {
	fake := &fakeEbay{}
	c := newTestEbay(t, fake, "", "")

	assert.False(t, c.Configured())
	items, err := c.Search(context.Background(), "seats")
	assert.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int32(0), fake.tokenCalls.Load())
}

func TestEbayAuthFailure(t *testing.T) {
	fake := &fakeEbay{}
	c := newTestEbay(t, fake, "id", "wrong")

	items, err := c.Search(context.Background(), "seats")
	assert.Empty(t, items)
	assert.True(t, scrapeerrors.Is(err, scrapeerrors.ErrorTypeAuth))
	assert.Equal(t, int32(0), fake.searchCalls.Load())
}

func TestEbaySearchFailures(t *testing.T) {
	t.Run("status drops token", func(t *testing.T) {
		fake := &fakeEbay{searchCode: http.StatusUnauthorized}
		c := newTestEbay(t, fake, "id", "secret")

		_, err := c.Search(context.Background(), "seats")
		assert.True(t, scrapeerrors.Is(err, scrapeerrors.ErrorTypeStatus))
		_, err = c.Search(context.Background(), "seats")
		assert.Error(t, err)
		assert.Equal(t, int32(2), fake.tokenCalls.Load())
	})

	t.Run("rate limited", func(t *testing.T) {
		fake := &fakeEbay{searchCode: http.StatusTooManyRequests}
		c := newTestEbay(t, fake, "id", "secret")

		_, err := c.Search(context.Background(), "seats")
		assert.True(t, scrapeerrors.Is(err, scrapeerrors.ErrorTypeRateLimit))
	})
}

func TestUnknownEnvironmentFallsBackToProduction(t *testing.T) {
	c := NewEbayClient("id", "secret", "staging", helpers.NewClient(time.Second), "Agent/2")
	assert.Equal(t, EbayAPIURLs["PRODUCTION"], c.BaseURL)
	assert.Equal(t, "Agent/2", c.UserAgent)
	assert.Equal(t, "ebay", c.Name())
}

func TestFacebookPlaceholder(t *testing.T) {
	fb := NewFacebook()
	items, err := fb.Search(context.Background(), "seats")
	assert.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, "facebook", fb.Name())
}
