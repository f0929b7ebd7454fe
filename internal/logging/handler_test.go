// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func setupBuffer(t *testing.T, format, level string) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, closer, err := Setup(Options{Service: "holomob", Version: "1.0.0", Format: format, Level: level, Writer: &buf})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer.Close() })
	return logger, &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "failed to parse JSON: %s", buf.String())
	return entry
}

func TestSetup_JSONFormat(t *testing.T) {
	logger, buf := setupBuffer(t, "json", "")

	logger.Info("test message")

	entry := decode(t, buf)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "holomob", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "level")
}

func TestSetup_TextFormat(t *testing.T) {
	logger, buf := setupBuffer(t, "text", "")

	logger.Info("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), "holomob")
}

func TestSetup_DefaultFormatIsJSON(t *testing.T) {
	logger, buf := setupBuffer(t, "", "")
	logger.Info("test message")
	decode(t, buf)
}

func TestSetup_InvalidFormat(t *testing.T) {
	_, _, err := Setup(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestSetup_LevelFiltersBelowThreshold(t *testing.T) {
	logger, buf := setupBuffer(t, "json", "warn")

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestHandler_TraceContext(t *testing.T) {
	logger, buf := setupBuffer(t, "json", "")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.InfoContext(ctx, "traced message")

	entry := decode(t, buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestHandler_AgentContext(t *testing.T) {
	logger, buf := setupBuffer(t, "json", "")
	id := ulid.Make()

	logger.InfoContext(WithAgent(context.Background(), id), "agent tick")

	entry := decode(t, buf)
	assert.Equal(t, id.String(), entry["agent_id"])
	assert.NotContains(t, entry, "trace_id")
}

func TestHandler_WithAttrsKeepsContext(t *testing.T) {
	logger, buf := setupBuffer(t, "json", "")
	id := ulid.Make()

	logger.With("component", "scheduler").InfoContext(WithAgent(context.Background(), id), "fired")

	entry := decode(t, buf)
	assert.Equal(t, "scheduler", entry["component"])
	assert.Equal(t, id.String(), entry["agent_id"])
	assert.Equal(t, "holomob", entry["service"])
}

func TestAgentFromContext_Missing(t *testing.T) {
	_, ok := AgentFromContext(context.Background())
	assert.False(t, ok)
}

func TestSetup_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holomob.log")
	var console bytes.Buffer

	logger, closer, err := Setup(Options{
		Service: "holomob",
		Writer:  &console,
		File:    FileOptions{Path: path, MaxSizeMB: 1, MaxBackups: 1},
	})
	require.NoError(t, err)

	logger.Info("to both sinks")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both sinks")
	assert.Contains(t, console.String(), "to both sinks")
}

func TestSetDefault(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	closer, err := SetDefault(Options{Service: "test-service", Version: "2.0.0", Format: "json"})
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()

	assert.NotEqual(t, original, slog.Default(), "SetDefault did not change the default logger")
}
