package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel covers the levels a user may configure.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	for _, s := range []string{"unknown", "panic", "fatal"} {
		_, ok := ParseLogLevel(s)
		require.False(t, ok, s)
	}
}

// TestFromContext_FallsBackToGlobal checks that a bare context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestWithKV_WritesFields ensures scoped loggers carry their name and fields into the output.
func TestWithKV_WritesFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), NewWithOutput(zapcore.DebugLevel, zapcore.AddSync(&buf)))
	ctx = WithName(ctx, "orchestrator")
	ctx = WithKV(ctx, "session", "abc")

	InfoKV(ctx, "Action dispatched", "action", "download_game")

	out := buf.String()
	require.Contains(t, out, "orchestrator")
	require.Contains(t, out, "Action dispatched")
	require.Contains(t, out, `"session": "abc"`)
	require.Contains(t, out, `"action": "download_game"`)
}

// TestWithLevel_IgnoresGlobalLevel pins a file logger below the console level.
func TestWithLevel_IgnoresGlobalLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := NewWithOutput(zapcore.ErrorLevel, zapcore.AddSync(&buf), WithLevel(zapcore.InfoLevel))
	l.Debug("dropped")
	l.With("action", "start_game").Info("kept")

	out := buf.String()
	require.NotContains(t, out, "dropped")
	require.Contains(t, out, "kept")
	require.Contains(t, out, "start_game")
}
