package logging_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/javascriptcore-go/jsc/pkg/jsc/logging"
)

func TestSlogLoggerRedacts(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := logging.New(slog.New(h)).With("component", "jsc")

	logger.Debug(context.Background(), "evaluate", logging.Redacted("source"), "url", "main.js")

	out := buf.String()
	assert.Contains(t, out, "component=jsc")
	assert.Contains(t, out, `source=`+logging.Placeholder())
	assert.Contains(t, out, "url=main.js")
}

func TestScriptKeepsShapeNotText(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.NewZap(zap.New(core))

	src := "let token = 'hunter2'"
	logger.Debug(context.Background(), "evaluate script", logging.Script(src, "main.js", 3)...)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, logging.Placeholder(), fields["source"])
	assert.EqualValues(t, len(src), fields["source_bytes"])
	assert.Equal(t, "main.js", fields["url"])
	assert.EqualValues(t, 3, fields["line"])
	assert.NotContains(t, entries[0].Message+fmt.Sprint(fields), "hunter2")
}

func TestHandleIsHex(t *testing.T) {
	a := logging.Handle("group", 0x2a)
	assert.Equal(t, "group", a.Key)
	assert.Equal(t, "0x2a", a.Value.String())
}

func TestNewNilUsesDefault(t *testing.T) {
	require.NotNil(t, logging.New(nil))
}

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.NewZap(zap.New(core)).With("group", 7)

	logger.Warn(context.Background(), "leaked context", logging.Redacted("source"), "count", 2, "dangling")

	entries := logs.All()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, zapcore.WarnLevel, e.Level)
	assert.Equal(t, "leaked context", e.Message)

	fields := e.ContextMap()
	assert.EqualValues(t, 7, fields["group"])
	assert.Equal(t, logging.Placeholder(), fields["source"])
	assert.EqualValues(t, 2, fields["count"])
	assert.Equal(t, "dangling", fields["!BADKEY"])
}

func TestZapNil(t *testing.T) {
	logger := logging.NewZap(nil)
	assert.NotPanics(t, func() { logger.Error(context.Background(), "dropped") })
}

func TestNop(t *testing.T) {
	logger := logging.Nop().With("k", "v")
	assert.NotPanics(t, func() {
		logger.Debug(context.Background(), "x")
		logger.Info(context.Background(), "x")
		logger.Warn(context.Background(), "x")
		logger.Error(context.Background(), "x")
	})
}
