package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/partsfinder/internal/category"
	"sjsage522/partsfinder/internal/listing"
	"sjsage522/partsfinder/services/store"
)

func newTestStore(t *testing.T, n int) *store.SQLStore {
	t.Helper()
	st, err := store.Open("sqlite3", filepath.Join(t.TempDir(), "parts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	ctx := context.Background()
	require.NoError(t, st.Init(ctx))

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < n; i++ {
		title := fmt.Sprintf("FS: E92 M3 exhaust #%d", i)
		if i%2 == 1 {
			title = fmt.Sprintf("FS: CSL spoiler #%d", i)
		}
		_, err := st.AddItem(ctx, listing.Listing{
			Source:  "forum:m3post",
			Title:   title,
			Price:   "$100",
			URL:     fmt.Sprintf("https://www.m3post.com/forums/showthread.php?t=%d", i),
			FoundAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
	return st
}

func doRequest(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestListItems(t *testing.T) {
	router := NewRouter(newTestStore(t, 25))

	rec, body := doRequest(t, router, http.MethodGet, "/api/items")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["items"], PageSize)
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(25), body["stats"].(map[string]any)["total_items"])

	first := body["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "https://www.m3post.com/forums/showthread.php?t=24", first["url"], "newest first")

	_, body = doRequest(t, router, http.MethodGet, "/api/items?page=2")
	assert.Len(t, body["items"], 5)

	_, body = doRequest(t, router, http.MethodGet, "/api/items?page=9")
	assert.Equal(t, []any{}, body["items"])

	_, body = doRequest(t, router, http.MethodGet, "/api/items?category=Exterior&limit=100")
	assert.Len(t, body["items"], 12)
	assert.Equal(t, "Exterior", body["category"])
}

func TestRecentAndSearch(t *testing.T) {
	router := NewRouter(newTestStore(t, 4))

	_, body := doRequest(t, router, http.MethodGet, "/api/items/recent?hours=2")
	assert.Len(t, body["items"], 4)
	assert.Equal(t, float64(2), body["hours"])

	_, body = doRequest(t, router, http.MethodGet, "/api/items/search?q=spoiler")
	assert.Len(t, body["items"], 2)
	assert.Equal(t, "spoiler", body["query"])

	_, body = doRequest(t, router, http.MethodGet, "/api/items/search?q=")
	assert.Equal(t, []any{}, body["items"])
}

func TestArchiveItem(t *testing.T) {
	st := newTestStore(t, 2)
	router := NewRouter(st)

	items, err := st.GetItems(context.Background(), 10, 0, false)
	require.NoError(t, err)
	require.Len(t, items, 2)

	rec, body := doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/items/%d/archive", items[0].ID))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	_, body = doRequest(t, router, http.MethodGet, "/api/items?archived=true")
	assert.Len(t, body["items"], 1)

	rec, body = doRequest(t, router, http.MethodPost, "/api/items/abc/archive")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", body["status"])
}

func TestStatsAndCategories(t *testing.T) {
	router := NewRouter(newTestStore(t, 3))

	_, body := doRequest(t, router, http.MethodGet, "/api/stats")
	assert.Equal(t, float64(3), body["stats"].(map[string]any)["total_items"])
	assert.Equal(t, float64(1), body["stats"].(map[string]any)["sources"])
	counts := body["categories"].([]any)
	require.Len(t, counts, 2)
	assert.Equal(t, "Engine", counts[0].(map[string]any)["category"])
	assert.Equal(t, float64(2), counts[0].(map[string]any)["count"])

	_, body = doRequest(t, router, http.MethodGet, "/api/categories")
	assert.Len(t, body["categories"], len(category.Categories()))

	rec, body := doRequest(t, router, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	rec, _ = doRequest(t, router, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// failingStore fails every read the handlers make
type failingStore struct {
	store.Store
}

var errStoreDown = errors.New("store down")

func (failingStore) GetItems(context.Context, int, int, bool) ([]listing.Listing, error) {
	return nil, errStoreDown
}

func (failingStore) GetStats(context.Context) (store.Stats, error) {
	return store.Stats{}, errStoreDown
}

func (failingStore) ArchiveItem(context.Context, int64) error {
	return errStoreDown
}

func TestStoreFailures(t *testing.T) {
	router := NewRouter(failingStore{})

	rec, body := doRequest(t, router, http.MethodGet, "/api/items")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", body["status"])

	rec, _ = doRequest(t, router, http.MethodGet, "/api/stats")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec, body = doRequest(t, router, http.MethodPost, "/api/items/7/archive")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "store down", body["message"])
}
