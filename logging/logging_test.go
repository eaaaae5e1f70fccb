package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/najoast/chatreg/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel(config.LogLevelDebug))
	assert.Equal(t, slog.LevelInfo, ParseLevel(config.LogLevelInfo))
	assert.Equal(t, slog.LevelWarn, ParseLevel(config.LogLevelWarn))
	assert.Equal(t, slog.LevelError, ParseLevel(config.LogLevelError))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestTextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LogConfig{Level: config.LogLevelInfo, Format: "text"}, &buf)

	logger.With("registry", "chatbot-tracker").Info("chatbot registered", "id", "id-1")
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "INF chatbot registered")
	assert.Contains(t, out, " registry=chatbot-tracker")
	assert.Contains(t, out, " id=id-1")
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "\x1b[", "color codes written with color disabled")
}

func TestTextHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LogConfig{Level: config.LogLevelInfo}, &buf)

	logger.WithGroup("actor").Info("started", "id", 3, slog.Group("opts", "mailbox", 10))

	out := buf.String()
	assert.Contains(t, out, " actor.id=3")
	assert.Contains(t, out, " actor.opts.mailbox=10")
}

func TestColorOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LogConfig{Level: config.LogLevelInfo, Color: true}, &buf)

	logger.Warn("careful")
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "careful")
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LogConfig{Level: config.LogLevelInfo, Format: "json"}, &buf)

	logger.Info("conversation stored", "id", "conv-1")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "conversation stored", record["msg"])
	assert.Equal(t, "conv-1", record["id"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LogConfig{Level: config.LogLevelInfo}, &buf)
	derived := logger.With("component", "x")

	derived.Debug("before")
	logger.SetLevel(config.LogLevelDebug)
	derived.Debug("after")

	assert.Equal(t, slog.LevelDebug, logger.Level())
	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "after")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatreg.log")

	logger, err := New(config.LogConfig{Level: config.LogLevelInfo, Output: path})
	require.NoError(t, err)
	logger.Info("to file")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "to file"))
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("dropped") })
}
