package logging

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// setupTestLogger configures a logger with a custom writer for tests
func setupTestLogger(output *bytes.Buffer, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	SetLoggerForTest(zerolog.New(output).With().Timestamp().Logger().Level(lvl))
}

func TestInfoLogging(t *testing.T) {
	var buf bytes.Buffer
	setupTestLogger(&buf, "info")

	Info("test message", "foo", 42, "bar", true)

	out := buf.String()
	if !strings.Contains(out, "test message") {
		t.Error("Expected log message not found in output")
	}
	if !strings.Contains(out, `"foo":42`) || !strings.Contains(out, `"bar":true`) {
		t.Error("Expected key-value pairs not found in output")
	}
}

func TestErrorValuesAreRenderedAsText(t *testing.T) {
	var buf bytes.Buffer
	setupTestLogger(&buf, "info")

	Error("render failed", "error", errors.New("net::ERR_NAME_NOT_RESOLVED"), "dangling")

	if !strings.Contains(buf.String(), `"error":"net::ERR_NAME_NOT_RESOLVED"`) {
		t.Errorf("expected error text in output, got %s", buf.String())
	}
	if strings.Contains(buf.String(), "dangling") {
		t.Error("dangling key should be dropped")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	setupTestLogger(&buf, "warn")

	Info("hidden")
	Warn("something odd", "code", 99)

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), `"code":99`) {
		t.Error("Warn log output missing expected content")
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	setupTestLogger(&buf, "warn")

	SetLogLevel("info")
	Info("should be visible")

	if !strings.Contains(buf.String(), "should be visible") {
		t.Error("Expected info log after SetLogLevel not found")
	}
}

func TestInitLoggerAndSetLogLevelFallback(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "url2pdf.log")
	InitLogger(logFile, 1, 1, 1, false, "invalid")
	SetLogLevel("invalid")
	Info("hello", "k", "v")
	Warn("warn")
	Error("error")
	Debug("debug")
}
