package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/regionplot/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_JSON(t *testing.T) {
	cfg := config.Default()
	cfg.LogFormat = config.LogFormatJSON

	var buf bytes.Buffer
	New(cfg, &buf).Info("dataset installed", "records", 49)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dataset installed", entry["msg"])
	assert.Equal(t, float64(49), entry["records"])
}

func TestNew_TextFiltersByLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = config.LogLevelWarn

	var buf bytes.Buffer
	logger := New(cfg, &buf)
	logger.Info("hidden")
	logger.Warn("chart ignored selection", "category", "Mars")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "category=Mars")
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	cfg := config.Default()
	cfg.Verbose = true

	var buf bytes.Buffer
	New(cfg, &buf).Debug("processing event")
	assert.Contains(t, buf.String(), "processing event")
}

func TestSetupWithWriter_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := SetupWithWriter(config.Default(), &buf)
	assert.Same(t, logger, slog.Default())

	slog.Info("via default")
	assert.Contains(t, buf.String(), "via default")
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}

func TestContext(t *testing.T) {
	logger := Discard()
	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
