package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"carpulse/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseLogLevel tests level parsing
func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLogLevel(tt.input))
		})
	}
}

// TestTraceHandler tests trace_id injection from context
func TestTraceHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)

	ctx := WithTraceID(context.Background(), "trace-123")
	WithComponent(logger, "test").InfoContext(ctx, "with trace")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "with trace", entry["msg"])
	assert.Equal(t, "trace-123", entry["trace_id"])
	assert.Equal(t, "test", entry["component"])

	buf.Reset()
	logger.Info("without trace")
	entry = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "trace_id")
}

// TestNewLogger tests the output modes
func TestNewLogger(t *testing.T) {
	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "carpulse.log")
		logger, sink, err := NewLogger(config.LoggingConfig{Level: "debug", Output: "file", FilePath: path})
		require.NoError(t, err)

		logger.Debug("to file")
		require.NoError(t, sink.Close())
		require.NoError(t, sink.Close(), "second close is a no-op")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"to file"`)
	})

	t.Run("stdout output", func(t *testing.T) {
		logger, sink, err := NewLogger(config.LoggingConfig{Level: "info", Output: "stdout"})
		require.NoError(t, err)
		assert.NotNil(t, logger)
		assert.NoError(t, sink.Close())
	})

	t.Run("unwritable file", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, nil, 0o600))

		_, _, err := NewLogger(config.LoggingConfig{Output: "both", FilePath: filepath.Join(blocker, "app.log")})
		assert.Error(t, err)
	})
}

// TestTraceIDs tests trace id generation and propagation helpers
func TestTraceIDs(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))

	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)), "existing id is kept")
	assert.NotEqual(t, GenerateTraceID(), GenerateTraceID())
}
