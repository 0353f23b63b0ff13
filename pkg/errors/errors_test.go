package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrapeErrorFormatting(t *testing.T) {
	err := NewNetwork("forum:m3post", "failed to fetch URL", io.ErrUnexpectedEOF)
	assert.Equal(t, "[network] forum:m3post: failed to fetch URL - unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	status := NewStatus("ebay", 503)
	assert.Equal(t, "[status] ebay: unexpected status code: 503", status.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, NewNetwork("x", "m", nil).IsRetryable())
	assert.True(t, NewStatus("x", 500).IsRetryable())
	assert.False(t, NewParsing("x", "m", nil).IsRetryable())
	assert.False(t, NewRateLimit("x", "60").IsRetryable())
	assert.False(t, NewConfiguration("m", nil).IsRetryable())
}

func TestIsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("store: %w", NewStorage("sqlite3", "insert failed", nil))
	assert.True(t, Is(wrapped, ErrorTypeStorage))
	assert.False(t, Is(wrapped, ErrorTypeNetwork))
	assert.False(t, Is(io.EOF, ErrorTypeStorage))
}
