package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/partsfinder/helpers"
	"sjsage522/partsfinder/internal/listing"
)

const vbulletinListing = `<html><body>
<table id="threadslist">
  <tr><td>
    <a id="thread_title_100" href="showthread.php?t=100">FS:  E92 M3
      exhaust $800 shipped</a>
    <span class="smallfont">(<a href="showthread.php?t=100&page=2">2</a>)</span>
  </td></tr>
  <tr><td><a id="thread_title_101" href="showthread.php?t=101&amp;highlight=wheels">WTB: wheels</a></td></tr>
  <tr><td><a id="thread_title_102" href="showthread.php?t=100#post5">FS: E92 M3 exhaust repost</a></td></tr>
  <tr><td><a id="thread_title_103" href="showthread.php?t=103">Hi</a></td></tr>
  <tr><td><a id="thread_title_104" href="">Empty href thread</a></td></tr>
  <tr><td><a id="thread_title_105" href="https://www.m3post.com/forums/showthread.php?t=105">FS: OEM carbon roof</a></td></tr>
</table>
<div class="pagenav"><a href="forumdisplay.php?f=182&page=2">Next</a></div>
</body></html>`

func TestParseListingThreadTitleIDs(t *testing.T) {
	fetcher := NewListingFetcher(M3Post, helpers.NewClient(time.Second), nil)
	threads := fetcher.ParseListing(mustDocument(t, vbulletinListing))

	require.Len(t, threads, 3)
	assert.Equal(t, listing.ThreadRef{
		Title: "FS: E92 M3 exhaust $800 shipped",
		URL:   "https://www.m3post.com/forums/showthread.php?t=100",
	}, threads[0])
	assert.Equal(t, "WTB: wheels", threads[1].Title)
	assert.Equal(t, "https://www.m3post.com/forums/showthread.php?t=101", threads[1].URL)
	assert.Equal(t, "https://www.m3post.com/forums/showthread.php?t=105", threads[2].URL)
}

func TestParseListingFallbacks(t *testing.T) {
	fetcher := NewListingFetcher(M3Post, helpers.NewClient(time.Second), nil)

	t.Run("threads table", func(t *testing.T) {
		doc := mustDocument(t, `<a href="showthread.php?t=1">Announcement: forum rules</a>
			<table id="threadslist">
				<tr><td><a href="showthread.php?t=2">FS: BBK calipers</a></td></tr>
				<tr><td><a href="/forums/showthread.php?t=3">FS: Seats</a></td></tr>
			</table>`)

		threads := fetcher.ParseListing(doc)
		require.Len(t, threads, 2)
		assert.Equal(t, "https://www.m3post.com/forums/showthread.php?t=2", threads[0].URL)
		assert.Equal(t, "https://www.m3post.com/forums/showthread.php?t=3", threads[1].URL)
	})

	t.Run("any thread link skips pagination", func(t *testing.T) {
		doc := mustDocument(t, `<div>
			<a href="showthread.php?t=7">FS: CSL style trunk</a>
			<a href="showthread.php?t=7&page=2">Previous</a>
			<a href="showthread.php?t=8">»</a>
			<a href="showthread.php?t=9">Last</a>
		</div>`)

		threads := fetcher.ParseListing(doc)
		require.Len(t, threads, 1)
		assert.Equal(t, "FS: CSL style trunk", threads[0].Title)
	})

	t.Run("no thread links", func(t *testing.T) {
		doc := mustDocument(t, `<p>Nothing to see</p>`)
		assert.Empty(t, fetcher.ParseListing(doc))
	})
}

func TestFetchListingPage(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forums/forumdisplay.php" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		gotQuery = map[string]string{"f": q.Get("f"), "page": q.Get("page"), "order": q.Get("order")}
		if q.Get("f") == "500" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(vbulletinListing))
	}))
	defer server.Close()

	site := Site{Name: "test", BaseURL: server.URL, ForumPath: "/forums"}
	fetcher := NewListingFetcher(site, helpers.NewClient(5*time.Second), nil)

	threads := fetcher.FetchListingPage(context.Background(), 182, 2)
	assert.Equal(t, map[string]string{"f": "182", "page": "2", "order": "desc"}, gotQuery)
	require.Len(t, threads, 3)
	assert.Equal(t, server.URL+"/forums/showthread.php?t=100", threads[0].URL)
	// absolute links keep their own host
	assert.Equal(t, "https://www.m3post.com/forums/showthread.php?t=105", threads[2].URL)

	assert.Empty(t, fetcher.FetchListingPage(context.Background(), 500, 1))
}
