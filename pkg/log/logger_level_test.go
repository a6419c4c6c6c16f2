package log

import (
	"bytes"
	stdlog "log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newCaptureLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := NewLogger(level)
	l.logger = stdlog.New(buf, "", 0)
	return l, buf
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newCaptureLogger(LevelWarn)

	l.Debug("debug message")
	l.Info("info message")
	assert.Empty(t, buf.String())

	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "[ERROR]")
	assert.Contains(t, out, "error message")
}

func TestLogger_SetLevel(t *testing.T) {
	l, buf := newCaptureLogger(LevelError)

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.SetLevel(LevelDebug)
	l.Info("visible %d", 42)
	assert.Contains(t, buf.String(), "visible 42")
}
