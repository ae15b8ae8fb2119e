// ABOUTME: Tests for CLI helpers: summary rendering, probe address and log fan-out
// ABOUTME: Console handlers write to buffers; no servers are started

package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/hiring-router/internal/analytics"
	"github.com/2389/hiring-router/internal/config"
	"github.com/2389/hiring-router/internal/telemetry"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	renderSummary(&buf, "/var/log/requests.jsonl", analytics.Summary{
		Total:   3,
		ByLevel: map[string]int{"INFO": 2, "ERROR": 1},
		ByEvent: map[string]int{"tool_call": 2, "tool_error": 1},
	})

	out := buf.String()
	assert.Contains(t, out, "/var/log/requests.jsonl")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "tool_error")
	assert.Less(t, strings.Index(out, "ERROR"), strings.Index(out, "INFO"), "levels are sorted")
}

func TestProbeAddr(t *testing.T) {
	tests := []struct {
		bind string
		want string
	}{
		{"0.0.0.0", "127.0.0.1:8080"},
		{"", "127.0.0.1:8080"},
		{"::", "127.0.0.1:8080"},
		{"10.0.0.5", "10.0.0.5:8080"},
		{"::1", "[::1]:8080"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, probeAddr(config.ServerConfig{Bind: tt.bind, Port: 8080}), tt.bind)
	}
}

func TestConsoleLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, consoleLevel(config.LoggingConfig{Level: "DEBUG"}))
	assert.Equal(t, slog.LevelWarn, consoleLevel(config.LoggingConfig{Level: "warning"}))
	assert.Equal(t, slog.LevelError, consoleLevel(config.LoggingConfig{Level: "CRITICAL"}))
	assert.Equal(t, slog.LevelInfo, consoleLevel(config.LoggingConfig{Level: "nonsense"}))
}

func TestColorHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &colorHandler{mu: &sync.Mutex{}, out: &buf, level: slog.LevelInfo}
	logger := slog.New(h).With("component", "mcp").WithGroup("req")

	logger.Debug("hidden")
	logger.Warn("slow call", "tool", "generate_quiz")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WRN slow call")
	assert.Contains(t, out, "component=mcp")
	assert.Contains(t, out, "req.tool=generate_quiz")
}

func TestFanoutHandler(t *testing.T) {
	var console bytes.Buffer
	var events []telemetry.Event
	rec := telemetry.EmitterFunc(func(ev telemetry.Event) { events = append(events, ev) })

	logger := slog.New(&fanoutHandler{handlers: []slog.Handler{
		&colorHandler{mu: &sync.Mutex{}, out: &console, level: slog.LevelWarn},
		telemetry.NewHandler(rec, "hiring_router", slog.LevelInfo),
	}})

	logger.Info("tool pack registered", "pack", "builtin:recruiter")
	logger.Error("sink failed")

	assert.NotContains(t, console.String(), "tool pack registered")
	assert.Contains(t, console.String(), "sink failed")

	require.Len(t, events, 2)
	assert.Equal(t, "tool pack registered", events[0].Message)
	assert.Equal(t, "builtin:recruiter", events[0].Extra["pack"])
	assert.Equal(t, telemetry.LevelError, events[1].Level)

	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}
