package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-bot-app/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestNewRespectsLevel(t *testing.T) {
	log, err := New(config.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)

	assert.False(t, log.Zap().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Zap().Core().Enabled(zapcore.WarnLevel))
}

func TestNewConsoleFormat(t *testing.T) {
	log, err := New(config.LoggingConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)

	assert.True(t, log.Zap().Core().Enabled(zapcore.DebugLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}
