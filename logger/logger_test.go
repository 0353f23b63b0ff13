package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGetLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, zerolog.WarnLevel, getLogLevel())

	t.Setenv("LOG_LEVEL", "nonsense")
	assert.Equal(t, zerolog.InfoLevel, getLogLevel())

	t.Setenv("LOG_LEVEL", "")
	t.Setenv("PARTS_ENVIRONMENT", "production")
	assert.Equal(t, zerolog.InfoLevel, getLogLevel())

	t.Setenv("PARTS_ENVIRONMENT", "development")
	assert.Equal(t, zerolog.DebugLevel, getLogLevel())
}

func TestComponentLoggers(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	var buf bytes.Buffer
	InitWithWriter(&buf)
	defer func() { Default = nil }()

	ForSource("forum:m3post").Warn().Int("page", 2).Msg("listing page failed")
	ForNotifier("redis").Error().Msg("sink down")

	out := buf.String()
	assert.Contains(t, out, "forum:m3post")
	assert.Contains(t, out, "listing page failed")
	assert.Contains(t, out, "page=2")
	assert.Contains(t, out, "notifier=redis")
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Error().Msg("nothing")
	assert.NotNil(t, l.WithField("a", 1))
}
