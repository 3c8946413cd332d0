package temporal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	adapter := NewZapLoggerAdapter(zap.New(core))

	adapter.Info("Started worker", "TaskQueue", "payout-task-queue", "Attempt", 2)
	adapter.Error("Activity failed", "Error", errors.New("custody unavailable"), "dangling")

	withLogger, ok := adapter.(log.WithLogger)
	require.True(t, ok)
	withLogger.With("WorkflowID", "payout-01A-r0").Warn("Retrying")

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "temporal", entries[0].LoggerName)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "payout-task-queue", entries[0].ContextMap()["TaskQueue"])
	assert.EqualValues(t, 2, entries[0].ContextMap()["Attempt"])

	assert.Equal(t, "custody unavailable", entries[1].ContextMap()["Error"])
	assert.Len(t, entries[1].Context, 1)

	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "payout-01A-r0", entries[2].ContextMap()["WorkflowID"])
}
