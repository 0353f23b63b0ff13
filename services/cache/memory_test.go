package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	mc := NewMemoryCache()
	mc.now = func() time.Time { return now }

	_, err := mc.Get("missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, mc.Set("k", []byte("v"), time.Minute))
	value, err := mc.Get("k")
	assert.NoError(t, err)
	assert.Equal(t, "v", string(value))

	now = now.Add(time.Minute)
	_, err = mc.Get("k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheNoExpiration(t *testing.T) {
	mc := NewMemoryCache()
	assert.NoError(t, mc.Set("k", []byte("v"), 0))

	value, err := mc.Get("k")
	assert.NoError(t, err)
	assert.Equal(t, "v", string(value))

	assert.NoError(t, mc.Delete("k"))
	_, err = mc.Get("k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	mc := NewMemoryCache()
	buf := []byte("abc")
	assert.NoError(t, mc.Set("k", buf, 0))
	buf[0] = 'z'

	value, _ := mc.Get("k")
	assert.Equal(t, "abc", string(value))
}
