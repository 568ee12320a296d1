package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_AttachesContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithZap(zap.New(core))

	ctx := WithTransactionID(context.Background(), "tx-1")
	ctx = WithConnectionID(ctx, "conn-1")
	log.Info(ctx, "status sent", "status", "PROCESSED", "error", errors.New("boom"), 42)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "tx-1", fields["transaction_id"])
	assert.Equal(t, "conn-1", fields["connection_id"])
	assert.Equal(t, "PROCESSED", fields["status"])
	assert.Equal(t, "boom", fields["error"])
	assert.NotContains(t, fields, "request_id")
}

func TestNew_FallsBackToInfo(t *testing.T) {
	log := New("not-a-level")
	require.NotNil(t, log)
	assert.True(t, log.zap.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.zap.Core().Enabled(zapcore.DebugLevel))
}
