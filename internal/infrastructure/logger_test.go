package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supersonicwisd1/result-processing-system/internal/config"
)

func TestInitLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := InitLogger(config.LoggingConfig{Level: "debug", Output: "file", FilePath: path})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("hello")
	assert.FileExists(t, path)
}

func TestTraceHandler_InjectsTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&traceHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	ctx := WithTraceID(context.Background(), "abc-123")
	logger.InfoContext(ctx, "processing upload")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc-123", entry["trace_id"])
}

func TestTraceHandler_NoTraceIDWithoutContextValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&traceHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	logger.InfoContext(context.Background(), "no trace")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, present := entry["trace_id"]
	assert.False(t, present)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("anything"))
}
