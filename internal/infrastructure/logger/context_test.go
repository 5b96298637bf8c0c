package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext(t *testing.T) {
	logger := zap.NewExample()
	ctx := WithContext(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContext_NotFound(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
	assert.NotNil(t, FromContext(ctx))
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, enriched := WithRequestID(context.Background(), base, "run-123")
	enriched.Info("enriched")

	assert.Equal(t, "run-123", GetRequestID(ctx))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "run-123", logs.All()[0].ContextMap()["request_id"])
}

func TestGetters_NotFound(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetCommand(ctx))
}

func TestContextLogger_EnrichesWithContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx, _ := WithRequestID(context.Background(), base, "run-1")
	ctx, _ = WithCommand(ctx, base, "report")

	L(ctx).Info("report rendered", zap.Int("orders", 3))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "run-1", fields["request_id"])
	assert.Equal(t, "report", fields["command"])
	assert.EqualValues(t, 3, fields["orders"])
}

func TestContextLogger_LogLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cl := L(WithContext(context.Background(), zap.New(core)))

	cl.Debug("debug")
	cl.Info("info")
	cl.Warn("warn")
	cl.Error("error")

	assert.Equal(t, 4, logs.Len())
	assert.Equal(t, 1, logs.FilterMessage("warn").Len())
}

func TestContextLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx, _ := WithCommand(context.Background(), zap.New(core), "sell")

	L(ctx).With(zap.Int("client", 2)).Info("sale recorded")

	fields := logs.All()[0].ContextMap()
	assert.EqualValues(t, 2, fields["client"])
	assert.Equal(t, "sell", fields["command"])
}

func TestWithLogger_UsesProvidedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&Config{Level: "info", Format: "json"}, &buf)
	ctx := context.WithValue(context.Background(), RequestIDKey, "run-9")

	WithLogger(ctx, logger).Info("direct")

	assert.Contains(t, buf.String(), `"request_id":"run-9"`)
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := WithLogger(context.Background(), nil)
	assert.NotPanics(t, func() {
		cl.Info("no logger")
		cl.With(zap.String("k", "v")).Warn("still fine")
		_ = cl.Sugar()
		_ = cl.Zap()
	})
}
