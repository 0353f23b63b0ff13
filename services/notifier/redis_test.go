package notifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/partsfinder/internal/listing"
)

func TestRedisNotifier(t *testing.T) {
	ctx := context.Background()
	stream := "test_stream_partsfinder"

	n := NewRedisNotifier("localhost:6379", 0, stream, 2)
	defer n.Close()

	// Test if Redis is available
	if err := n.Ping(ctx); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 0})
	defer client.Close()
	client.Del(ctx, stream)
	defer client.Del(ctx, stream)

	items := []listing.Listing{
		{Source: "forum:m3post", Title: "one", Price: "$1", URL: "https://a"},
		{Source: "forum:m3post", Title: "two", Price: "$2", URL: "https://b"},
		{Source: "forum:m3post", Title: "three", Price: "$3", URL: "https://c"},
	}
	require.NoError(t, n.SendItems(WithRunID(ctx, "run-42"), items))

	length, err := client.XLen(ctx, stream).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), length, "stream is trimmed after the batch")

	entries, err := client.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, "run-42", last.Values["run_id"])

	raw, err := base64.StdEncoding.DecodeString(last.Values[PayloadField].(string))
	require.NoError(t, err)
	var got listing.Listing
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "three", got.Title)
	assert.Equal(t, "https://c", got.URL)
}

func TestRedisNotifierUnavailable(t *testing.T) {
	n := NewRedisNotifier("127.0.0.1:1", 0, "unused", 10)
	defer n.Close()

	err := n.SendItem(context.Background(), listing.Listing{URL: "https://a"})
	assert.Error(t, err)
	assert.Equal(t, "redis", n.Name())
}
