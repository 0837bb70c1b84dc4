package util

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, LevelError, ParseLogLevel(" error "))
	assert.Equal(t, LevelInfo, ParseLogLevel("bogus"))
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{level: LevelInfo, fields: map[string]interface{}{}}
	logger.AddOutput(NewConsoleOutput(&buf, FormatText))

	logger.Debug("hidden")
	logger.Info("shown", F("events", 4))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO] shown events=4")
}

func TestLoggerWithSortedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{level: LevelDebug, fields: map[string]interface{}{}}
	logger.AddOutput(NewConsoleOutput(&buf, FormatText))

	child := logger.With(F("session", "abc"))
	child.Warn("tick", F("b", 2), F("a", 1))

	assert.Contains(t, buf.String(), "[WARN] tick a=1 b=2 session=abc")
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{level: LevelDebug, fields: map[string]interface{}{}}
	logger.AddOutput(NewConsoleOutput(&buf, FormatJSON))

	logger.Error("write failed", F("path", "trace.txt"))

	var entry LogEntry
	require.NoError(t, sonic.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "write failed", entry.Message)
	assert.Equal(t, "trace.txt", entry.Fields["path"])
}

func TestFileOutputFlushOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := NewLogger(LoggerOptions{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Info("recording started")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] recording started")
}

func TestGlobalLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{level: LevelDebug, fields: map[string]interface{}{}}
	logger.AddOutput(NewConsoleOutput(&buf, FormatText))

	SetLogger(logger)
	defer CloseLogger()

	LogInfof("played %d events", 3)
	LogDebug("tick", F("n", 1))

	assert.Contains(t, buf.String(), "played 3 events")
	assert.Contains(t, buf.String(), "tick n=1")

	CloseLogger()
	LogInfo("dropped")
	assert.NotContains(t, buf.String(), "dropped")
}
