package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrapForwardsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := Wrap(zap.New(core)).With(zap.String("component", "test"))

	log.Info("task updated", zap.String("variant_id", "v1"))
	log.Debug("detail")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "task updated", entries[0].Message)
		ctx := entries[0].ContextMap()
		assert.Equal(t, "test", ctx["component"])
		assert.Equal(t, "v1", ctx["variant_id"])
	}
}

func TestNewZapLoggerFallsBackOnBadLevel(t *testing.T) {
	log := NewZapLogger(&ZapLoggerConfig{Level: "nonsense", Encoding: "json"})
	assert.NotNil(t, log)
}
