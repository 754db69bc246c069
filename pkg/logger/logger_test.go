package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(&buf, "info").With("component", "test")

	log.Debug("hidden")
	log.Info("rates refreshed", "base", "USD")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "rates refreshed", record["msg"])
	assert.Equal(t, "USD", record["base"])
	assert.Equal(t, "test", record["component"])
}
