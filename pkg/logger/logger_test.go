package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Output: &buf})

	logger.Info().Str("symbol", "AAPL").Msg("loaded")

	out := buf.String()
	assert.Contains(t, out, `"symbol":"AAPL"`)
	assert.Contains(t, out, `"message":"loaded"`)
	assert.Contains(t, out, `"time":`)
}

func TestNew_AllLogLevels(t *testing.T) {
	testCases := []struct {
		level         string
		expectedLevel zerolog.Level
		name          string
	}{
		{"debug", zerolog.DebugLevel, "debug"},
		{"info", zerolog.InfoLevel, "info"},
		{"warn", zerolog.WarnLevel, "warn"},
		{"WARNING", zerolog.WarnLevel, "warning alias"},
		{"error", zerolog.ErrorLevel, "error"},
		{"unknown", zerolog.InfoLevel, "unknown defaults to info"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			New(Config{Level: tc.level, Output: &bytes.Buffer{}})
			assert.Equal(t, tc.expectedLevel, zerolog.GlobalLevel())
		})
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Output: &buf})

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func TestNew_PrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Pretty: true, Output: &buf})

	logger.Info().Msg("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestSetGlobalLogger(t *testing.T) {
	prev := log.Logger
	defer func() { log.Logger = prev }()

	var buf bytes.Buffer
	SetGlobalLogger(New(Config{Level: "info", Output: &buf}))
	log.Info().Msg("via global")

	assert.Contains(t, buf.String(), "via global")
}
