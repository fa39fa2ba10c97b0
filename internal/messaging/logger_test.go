package messaging_test

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/serroba/linkgate/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	t.Run("maps levels and fields", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		logger := messaging.NewZapLogger(zap.New(core))

		logger.Info("info msg", watermill.LogFields{"topic": "link.clicked"})
		logger.Debug("debug msg", nil)
		logger.Trace("trace msg", nil)
		logger.Error("error msg", errors.New("boom"), watermill.LogFields{"attempt": 2})

		entries := logs.All()
		require.Len(t, entries, 4)

		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, "link.clicked", entries[0].ContextMap()["topic"])
		assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
		assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
		assert.Equal(t, "boom", entries[3].ContextMap()["error"])
		assert.EqualValues(t, 2, entries[3].ContextMap()["attempt"])
	})

	t.Run("with carries fields", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		logger := messaging.NewZapLogger(zap.New(core)).With(watermill.LogFields{"consumer": "clicks"})

		logger.Info("started", nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "clicks", logs.All()[0].ContextMap()["consumer"])
	})
}
