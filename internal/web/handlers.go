package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"sjsage522/partsfinder/internal/category"
	"sjsage522/partsfinder/internal/listing"
	"sjsage522/partsfinder/logger"
	"sjsage522/partsfinder/services/store"
)

const (
	// PageSize is the number of listings per dashboard page
	PageSize      = 20
	maxPageSize   = 100
	recentLimit   = 100
	searchLimit   = 50
	defaultWindow = 24
)

// Handler serves the dashboard API
type Handler struct {
	store store.Store
	log   *logger.Logger
}

// NewHandler creates dashboard handlers over st
func NewHandler(st store.Store) *Handler {
	return &Handler{store: st, log: logger.ForWeb()}
}

type itemsResponse struct {
	Items    []listing.Listing `json:"items"`
	Stats    *store.Stats      `json:"stats,omitempty"`
	Page     int               `json:"page,omitempty"`
	Limit    int               `json:"limit,omitempty"`
	Category string            `json:"category,omitempty"`
	Hours    int               `json:"hours,omitempty"`
	Query    string            `json:"query,omitempty"`
}

// ListItems handles GET /api/items?page=&limit=&category=&archived=
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := intParam(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	limit := intParam(q.Get("limit"), PageSize)
	if limit < 1 || limit > maxPageSize {
		limit = PageSize
	}
	archived, _ := strconv.ParseBool(q.Get("archived"))
	cat := strings.TrimSpace(q.Get("category"))
	offset := (page - 1) * limit

	var items []listing.Listing
	var err error
	if cat != "" {
		items, err = h.store.GetItemsByCategory(r.Context(), cat, limit, offset, archived)
	} else {
		items, err = h.store.GetItems(r.Context(), limit, offset, archived)
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list items")
		WriteJSONError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read stats")
		WriteJSONError(w, http.StatusInternalServerError, "failed to read stats")
		return
	}

	RespondWithJSON(w, http.StatusOK, itemsResponse{
		Items:    nonNil(items),
		Stats:    &stats,
		Page:     page,
		Limit:    limit,
		Category: cat,
	})
}

// RecentItems handles GET /api/items/recent?hours=
func (h *Handler) RecentItems(w http.ResponseWriter, r *http.Request) {
	hours := intParam(r.URL.Query().Get("hours"), defaultWindow)
	if hours < 1 {
		hours = defaultWindow
	}

	items, err := h.store.GetRecentItems(r.Context(), hours, recentLimit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list recent items")
		WriteJSONError(w, http.StatusInternalServerError, "failed to list recent items")
		return
	}
	RespondWithJSON(w, http.StatusOK, itemsResponse{Items: nonNil(items), Hours: hours})
}

// SearchItems handles GET /api/items/search?q=
func (h *Handler) SearchItems(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		RespondWithJSON(w, http.StatusOK, itemsResponse{Items: []listing.Listing{}})
		return
	}

	items, err := h.store.SearchItems(r.Context(), query, searchLimit)
	if err != nil {
		h.log.Error().Err(err).Str("query", query).Msg("Search failed")
		WriteJSONError(w, http.StatusInternalServerError, "search failed")
		return
	}
	RespondWithJSON(w, http.StatusOK, itemsResponse{Items: nonNil(items), Query: query})
}

// ArchiveItem handles POST /api/items/{id}/archive
func (h *Handler) ArchiveItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	if err := h.store.ArchiveItem(r.Context(), id); err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Archive error")
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Stats handles GET /api/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read stats")
		WriteJSONError(w, http.StatusInternalServerError, "failed to read stats")
		return
	}
	counts, err := h.store.GetCategoryStats(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read category stats")
		WriteJSONError(w, http.StatusInternalServerError, "failed to read stats")
		return
	}
	if counts == nil {
		counts = []store.CategoryCount{}
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"stats":      stats,
		"categories": counts,
	})
}

// Categories handles GET /api/categories
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string][]string{"categories": category.Categories()})
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RespondWithJSON writes payload as JSON with the given status
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.ForWeb().Warn().Err(err).Msg("Failed to write response")
	}
}

// WriteJSONError writes an error body in the dashboard's error shape
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	RespondWithJSON(w, status, map[string]string{"status": "error", "message": message})
}

func intParam(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func nonNil(items []listing.Listing) []listing.Listing {
	if items == nil {
		return []listing.Listing{}
	}
	return items
}
