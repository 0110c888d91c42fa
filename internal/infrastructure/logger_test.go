package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrocycle/internal/config"
)

func decodeLast(t *testing.T, out string) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry), "log output is not JSON: %s", out)
	return entry
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"}, &buf)
	require.NoError(t, err)

	logger.Info("test message", "key", "value")

	entry := decodeLast(t, buf.String())
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestNewLogger_Both(t *testing.T) {
	defer CloseLogFile()

	logFile := filepath.Join(t.TempDir(), "logs", "run.log")
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "json", Output: "both", FilePath: logFile}, &buf)
	require.NoError(t, err)

	logger.Debug("to both")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, "to both", decodeLast(t, string(content))["msg"])
	assert.Equal(t, "to both", decodeLast(t, buf.String())["msg"])
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "run-123")
	logger.InfoContext(ctx, "with trace")

	entry := decodeLast(t, buf.String())
	if entry["trace_id"] != "run-123" {
		t.Errorf("Expected trace_id='run-123', got %v", entry["trace_id"])
	}

	buf.Reset()
	logger.With("component", "x").InfoContext(ctx, "derived logger")
	assert.Equal(t, "run-123", decodeLast(t, buf.String())["trace_id"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLogLevel(tt.level))
		})
	}

	t.Run("debug suppressed at info", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger(config.LoggingConfig{Level: "info"}, &buf)
		require.NoError(t, err)
		logger.Debug("hidden")
		assert.Empty(t, buf.String())
	})
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)
	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)), "existing id is kept")
}
