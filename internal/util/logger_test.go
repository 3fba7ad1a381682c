package util

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel, format LogFormat) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := newLogger(level)
	logger.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 6e6, time.UTC) }
	logger.AddOutput(NewConsoleOutput(buf, format))
	return logger, buf
}

func TestLogger_TextFormatSortsFields(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatText)

	logger.Named("watch").Info("tick applied", F("fetched", 3), F("added", 2))

	assert.Equal(t, "2024/01/02 03:04:05.006 [INFO] (watch) tick applied added=2 fetched=3\n", buf.String())
}

func TestLogger_JSONFormat(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatJSON)

	logger.With(F("sid", "abc")).Warn("fetch failed", Err(assert.AnError))

	var entry map[string]interface{}
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "fetch failed", entry["message"])
	fields := entry["fields"].(map[string]interface{})
	assert.Equal(t, "abc", fields["sid"])
	assert.Equal(t, assert.AnError.Error(), fields["error"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatText)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warnf("shown %d", 1)

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "shown 1")
}

func TestLogger_NamedNests(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatText)

	logger.Named("api").Named("watch").Debug("started")

	assert.Contains(t, buf.String(), "(api.watch)")
}

func TestLogger_WithDoesNotLeakIntoParent(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatText)

	_ = logger.With(F("child", true))
	logger.Info("parent")

	assert.NotContains(t, buf.String(), "child")
}

func TestLogger_WithContextRequestID(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatText)

	ctx := ContextWithRequestID(context.Background(), "req-7")
	logger.WithContext(ctx).Info("handled")

	assert.Contains(t, buf.String(), "request_id=req-7")
	assert.Equal(t, "req-7", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestNewLogger_CreatesLogDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, err := NewLogger(LoggerConfig{Level: "info", File: path})
	require.NoError(t, err)
	logger.Info("written")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] written")
}

func TestLoggerConfig_Validate(t *testing.T) {
	cfg := LoggerConfig{Console: true}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, FormatText, cfg.Format)

	assert.Error(t, (&LoggerConfig{}).Validate())
	assert.Error(t, (&LoggerConfig{Console: true, Format: "xml"}).Validate())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelOff, ParseLevel("off"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	assert.NotPanics(t, func() {
		logger.Named("x").Error("nothing")
	})
}

func TestGlobalHelpers(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatText)
	previous := globalLogger
	globalLogger = logger
	t.Cleanup(func() { globalLogger = previous })

	LogDebug("debug", F("k", 1))
	LogDebugf("debug %s", "f")
	LogInfo("info")
	LogInfof("info %d", 2)
	LogWarn("warn")
	LogWarnf("warn %v", true)
	LogError("error", Err(assert.AnError))
	LogErrorf("error %s", "f")

	out := buf.String()
	assert.Equal(t, 8, strings.Count(out, "\n"))
	for _, want := range []string{"[DEBUG] debug k=1", "[DEBUG] debug f", "[INFO] info 2", "[WARN] warn true", "[ERROR] error f"} {
		assert.Contains(t, out, want)
	}
}
