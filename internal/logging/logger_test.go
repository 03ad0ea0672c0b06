package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"off", LevelOff, false},
		{"loud", LevelInfo, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			level, err := ParseLevel(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "OFF", LevelOff.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf})

	logger.WithComponent("compiler").
		With("cache", "templates").
		Error(context.Background(), errors.New("boom"), "build failed", "key_len", 3)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "build failed", entry["msg"])
	assert.Equal(t, "compiler", entry["component"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "templates", entry["cache"])
	assert.Equal(t, float64(3), entry["key_len"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Output: &buf})

	logger.Debug(context.Background(), "debug message")
	logger.Info(context.Background(), "info message")
	assert.Empty(t, buf.String())

	logger.Warn(context.Background(), nil, "warn message")
	assert.Contains(t, buf.String(), "warn message")
}

func TestNopLogger(t *testing.T) {
	logger := Nop()
	assert.NotPanics(t, func() {
		logger.Error(context.Background(), errors.New("x"), "ignored")
		logger.With("a", 1).WithComponent("b").Info(context.Background(), "ignored")
	})
}

func TestPerfLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Output: &buf})

	op := StartOperation(logger, "render")
	op.End(context.Background())
	assert.Contains(t, buf.String(), "render done")
	assert.Contains(t, buf.String(), "operation=render")
	assert.Contains(t, buf.String(), "duration_ms=")

	buf.Reset()
	op = StartOperation(logger, "compile")
	op.EndWithError(context.Background(), errors.New("bad markup"))
	out := buf.String()
	assert.True(t, strings.Contains(out, "compile failed"))
	assert.Contains(t, out, "bad markup")
}

func TestFatalDoesNotExit(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelFatal, Format: "json", Output: &buf})

	logger.Error(context.Background(), errors.New("plain"), "dropped")
	assert.Empty(t, buf.String())

	logger.Fatal(context.Background(), errors.New("boom"), "giving up")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, true, entry["fatal"])
}

func TestFieldsKeepOrder(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Output: &buf})

	logger.With("b", 1, "a", 2).Info(context.Background(), "ordered", "c", 3, "dangling")
	line := buf.String()
	assert.Less(t, strings.Index(line, "b=1"), strings.Index(line, "a=2"))
	assert.Less(t, strings.Index(line, "a=2"), strings.Index(line, "c=3"))
	assert.NotContains(t, line, "dangling")
}
