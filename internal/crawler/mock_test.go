package crawler

import (
	"context"
	"errors"
	"sync"
	"time"

	"sjsage522/partsfinder/internal/listing"
	"sjsage522/partsfinder/services/cache"
)

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	mu     sync.Mutex
	cache  map[string][]byte
	getErr error
	sets   int
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		cache: make(map[string][]byte),
	}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[key] = value
	m.sets++
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, key)
	return nil
}

var errMockBackend = errors.New("backend unavailable")

// mockPageFetcher serves canned listing pages and counts calls
type mockPageFetcher struct {
	mu    sync.Mutex
	pages map[int][]listing.ThreadRef
	calls []int
}

func (m *mockPageFetcher) FetchListingPage(ctx context.Context, forumID, page int) []listing.ThreadRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, page)
	return m.pages[page]
}

func (m *mockPageFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockThreadLister returns fixed threads per section
type mockThreadLister struct {
	threads map[int][]listing.ThreadRef
}

func (m *mockThreadLister) GetThreads(ctx context.Context, forumID, pages int) []listing.ThreadRef {
	return m.threads[forumID]
}

// mockDetailSource returns fixed details per URL and records requests
type mockDetailSource struct {
	details   map[string]ThreadDetails
	requested []string
}

func (m *mockDetailSource) FetchDetails(ctx context.Context, threadURL string) ThreadDetails {
	m.requested = append(m.requested, threadURL)
	return m.details[threadURL]
}
