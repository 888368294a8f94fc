package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/smart-extract/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{" error ", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseLevel(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	buf := &logBuffer{}
	logger, err := New(config.LogConfig{Level: "warn", Format: "json"}, buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "task_id", "abc")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
	assert.Equal(t, "abc", entries[0]["task_id"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Level: "info", Format: "text"}, &buf)
	require.NoError(t, err)

	logger.Info("queue started", "max_concurrent", 2)
	assert.Contains(t, buf.String(), "msg=\"queue started\"")
	assert.Contains(t, buf.String(), "max_concurrent=2")
}

func TestNew_InvalidLevelWarns(t *testing.T) {
	buf := &logBuffer{}
	logger, err := New(config.LogConfig{Level: "loud", Format: "json"}, buf)
	require.NoError(t, err)
	require.NotNil(t, logger)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "loud", entries[0]["configured_level"])

	logger.Debug("still hidden at info")
	entries, err = buf.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNew_UnsupportedFormat(t *testing.T) {
	_, err := New(config.LogConfig{Level: "info", Format: "xml"}, io.Discard)
	assert.ErrorContains(t, err, "unsupported log format")
}

func TestSetup_SetsDefault(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	logger, err := Setup(config.LogConfig{Level: "debug", Format: "json"}, io.Discard)
	require.NoError(t, err)
	assert.Same(t, logger, slog.Default())
}

func TestContextLogger(t *testing.T) {
	scoped, buf := newTestLogger()
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	ctx := WithLogger(context.Background(), scoped.With("run_id", "r1"))
	FromContext(ctx).Info("item settled")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "r1", entries[0]["run_id"])
}
