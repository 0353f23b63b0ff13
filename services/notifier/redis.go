package notifier

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"sjsage522/partsfinder/internal/listing"
	"sjsage522/partsfinder/logger"
	scrapeerrors "sjsage522/partsfinder/pkg/errors"
)

// PayloadField is the stream entry field holding the encoded listing
const PayloadField = "b64_listing"

// RedisNotifier publishes listings to a Redis stream for downstream consumers
type RedisNotifier struct {
	client          *redis.Client
	stream          string
	streamMaxLength int64
	log             *logger.Logger
}

// NewRedisNotifier creates a new Redis stream notifier
func NewRedisNotifier(addr string, db int, stream string, streamMaxLength int64) *RedisNotifier {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return NewRedisNotifierWithClient(client, stream, streamMaxLength)
}

// NewRedisNotifierWithClient wraps an existing client
func NewRedisNotifierWithClient(client *redis.Client, stream string, streamMaxLength int64) *RedisNotifier {
	return &RedisNotifier{
		client:          client,
		stream:          stream,
		streamMaxLength: streamMaxLength,
		log:             logger.ForNotifier("redis"),
	}
}

func (n *RedisNotifier) Name() string {
	return "redis"
}

// Ping checks the connection
func (n *RedisNotifier) Ping(ctx context.Context) error {
	return n.client.Ping(ctx).Err()
}

// SendItem publishes one listing. The JSON payload is base64 encoded
// before publishing.
func (n *RedisNotifier) SendItem(ctx context.Context, item listing.Listing) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return scrapeerrors.NewNotify("redis", "failed to encode listing", err)
	}

	values := map[string]interface{}{
		PayloadField: base64.StdEncoding.EncodeToString(payload),
	}
	if runID := RunID(ctx); runID != "" {
		values["run_id"] = runID
	}

	if err := n.client.XAdd(ctx, &redis.XAddArgs{Stream: n.stream, Values: values}).Err(); err != nil {
		return scrapeerrors.NewNotify("redis", "failed to publish listing", err)
	}
	return nil
}

// SendItems publishes a batch and trims the stream to its maximum length
func (n *RedisNotifier) SendItems(ctx context.Context, items []listing.Listing) error {
	for _, item := range items {
		if err := n.SendItem(ctx, item); err != nil {
			return err
		}
	}
	if err := n.TrimStream(ctx); err != nil {
		return err
	}
	n.log.Info().Int("items", len(items)).Str("stream", n.stream).Msg("Published listings")
	return nil
}

// TrimStream trims the stream to the configured maximum length
func (n *RedisNotifier) TrimStream(ctx context.Context) error {
	if n.streamMaxLength <= 0 {
		return nil
	}
	if err := n.client.XTrimMaxLen(ctx, n.stream, n.streamMaxLength).Err(); err != nil {
		return scrapeerrors.NewNotify("redis", "failed to trim stream", err)
	}
	return nil
}

// Close closes the Redis connection
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
