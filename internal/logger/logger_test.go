package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerTagsRecords(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core), "api client")

	l.Info("Input model:", "gpt4")
	l.Errorw("service error", "message", "boom", "type", "server_error")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "api client", entries[0].LoggerName)
	assert.Equal(t, "Input model: gpt4", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["message"])
}

func TestWithAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := New(zap.New(core), "stream").With("path", "/conversations")

	l.Warnw("frame decode failed")

	assert.Equal(t, 1, logs.FilterField(zap.String("path", "/conversations")).Len())
	assert.Equal(t, "stream", l.Tag())
}

func TestNewLoggerBeforeInitDiscards(t *testing.T) {
	l := NewLogger("views")
	assert.NotPanics(t, func() { l.Info("nothing to see") })
}
