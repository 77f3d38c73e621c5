package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentwatch/talentwatch/internal/config"
	"github.com/talentwatch/talentwatch/internal/log"
)

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	logger.Info("run finished", "batches", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "run finished", line["msg"])
	assert.Equal(t, float64(3), line["batches"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLoggerWithWriter(&buf, config.LogFormatJSON, "WARN")

	logger.Info("suppressed")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestLogger_RunIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	ctx := log.WithRunID(context.Background())
	require.NotEmpty(t, log.RunID(ctx))

	logger.InfoContext(ctx, "folding batch")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, log.RunID(ctx), line["run_id"])
}

func TestLogger_NoRunIDWithoutContextValue(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	logger.InfoContext(context.Background(), "plain")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	_, has := line["run_id"]
	assert.False(t, has)
}
