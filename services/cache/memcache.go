package cache

import (
	"errors"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	scrapeerrors "sjsage522/partsfinder/pkg/errors"
)

// KeyPrefix namespaces every key so agents can share a memcached with other apps
const KeyPrefix = "partsfinder:"

// MemcacheService implements CacheService using memcache, for deployments
// where several agents should share section listings.
type MemcacheService struct {
	client *memcache.Client
	addr   string
}

// NewMemcacheService creates a new memcache service. serverAddr may list
// several servers separated by commas.
func NewMemcacheService(serverAddr string) *MemcacheService {
	var servers []string
	for _, s := range strings.Split(serverAddr, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	return &MemcacheService{
		client: memcache.New(servers...),
		addr:   serverAddr,
	}
}

// Ping checks that the server is reachable
func (m *MemcacheService) Ping() error {
	if err := m.client.Ping(); err != nil {
		return scrapeerrors.NewStorage("memcache", "ping "+m.addr, err)
	}
	return nil
}

// Get retrieves a value from memcache
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(KeyPrefix + key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, scrapeerrors.NewStorage("memcache", "get "+key, err)
	}
	return item.Value, nil
}

// Set stores a value with an expiration time. Sub-second expirations are
// rounded up so they do not turn into "never expires".
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	seconds := int32(expiration / time.Second)
	if expiration > 0 && expiration%time.Second != 0 {
		seconds++
	}
	err := m.client.Set(&memcache.Item{
		Key:        KeyPrefix + key,
		Value:      value,
		Expiration: seconds,
	})
	if err != nil {
		return scrapeerrors.NewStorage("memcache", "set "+key, err)
	}
	return nil
}

// Delete removes a value; deleting a missing key is not an error
func (m *MemcacheService) Delete(key string) error {
	err := m.client.Delete(KeyPrefix + key)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return scrapeerrors.NewStorage("memcache", "delete "+key, err)
	}
	return nil
}
