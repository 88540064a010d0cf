package logger

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, fn func()) string {
	orig := os.Stdout
	defer func() { os.Stdout = orig }()

	r, w, err := os.Pipe()
	require.NoError(t, err, "failed to create stdout pipe")

	os.Stdout = w

	fn()

	err = w.Close()
	require.NoError(t, err, "failed to close stdout pipe")

	out, err := io.ReadAll(r)
	require.NoError(t, err, "failed to read stdout pipe")

	return string(out)
}

func TestLogger_parseLevelString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"Debug level", "DEBUG", slog.LevelDebug},
		{"Debug level lowercase", "debug", slog.LevelDebug},
		{"Info level", "INFO", slog.LevelInfo},
		{"Warn level", "warn", slog.LevelWarn},
		{"Error level", "error", slog.LevelError},
		{"Empty defaults to info", "", slog.LevelInfo},
		{"Unknown defaults to info", "unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLevelString(tt.input)

			require.Equal(t, tt.expected, got, "parseLevelString(%q) should return %v", tt.input, tt.expected)
		})
	}
}

func TestLogger_New(t *testing.T) {
	t.Run("dev environment is text", func(t *testing.T) {
		out := capture(t, func() {
			New(EnvDevelopment, LevelInfo).Info("test message", "key", "value")
		})

		require.Contains(t, out, "test message")
		require.Contains(t, out, "key=value", "dev logs should be human readable")
	})

	t.Run("anything else is json", func(t *testing.T) {
		out := capture(t, func() {
			New(EnvProduction, LevelInfo).Info("test message", "key", "value")
		})

		var entry map[string]any
		err := json.Unmarshal([]byte(out), &entry)
		require.NoError(t, err, "JSON log should be valid")
		require.Equal(t, "test message", entry["msg"], "JSON log should contain the message")
		require.Equal(t, "INFO", entry["level"], "JSON log should contain the level")
		require.Equal(t, "value", entry["key"], "JSON log should contain key-value pairs")
	})
}

func TestLogger_SourceIsCaller(t *testing.T) {
	out := capture(t, func() {
		NewJSONLogger(LevelInfo).Info("test message")
	})

	var entry map[string]any
	err := json.Unmarshal([]byte(out), &entry)
	require.NoError(t, err, "JSON log should be valid")

	source, ok := entry["source"].(map[string]any)
	require.True(t, ok, "JSON log should contain source info")
	require.Equal(t, "logger_test.go", source["file"], "source should point at the caller, not the wrapper")
}

func TestLogger_NewNoOpLogger(t *testing.T) {
	out := capture(t, func() {
		logger := NewNoOpLogger()
		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")
		logger.Error("error message")
	})

	require.Empty(t, out, "NoOp logger should not write anything")
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		logFn    func(Logger)
		isLogged bool
	}{
		{"Debug logger logs debug", LevelDebug, func(l Logger) { l.Debug("test") }, true},
		{"Debug logger logs info", LevelDebug, func(l Logger) { l.Info("test") }, true},

		{"Info logger skips debug", LevelInfo, func(l Logger) { l.Debug("test") }, false},
		{"Info logger logs info", LevelInfo, func(l Logger) { l.Info("test") }, true},
		{"Info logger logs warn", LevelInfo, func(l Logger) { l.Warn("test") }, true},

		{"Warn logger skips info", LevelWarn, func(l Logger) { l.Info("test") }, false},
		{"Warn logger logs warn", LevelWarn, func(l Logger) { l.Warn("test") }, true},

		{"Error logger skips warn", LevelError, func(l Logger) { l.Warn("test") }, false},
		{"Error logger logs error", LevelError, func(l Logger) { l.Error("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := capture(t, func() {
				tt.logFn(NewLogger(tt.level))
			})

			require.Equal(t, tt.isLogged, len(out) > 0, "Logger level %s: expected isLogged=%v", tt.level, tt.isLogged)
		})
	}
}

func TestLogger_With(t *testing.T) {
	out := capture(t, func() {
		logger := NewLogger(LevelInfo).With("component", "test", "version", "1.0")

		logger.Info("test message")
	})

	require.Contains(t, out, "component=test")
	require.Contains(t, out, "version=1.0")
	require.Contains(t, out, "test message")
}
