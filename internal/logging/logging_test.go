package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"loud":  zapcore.InfoLevel,
	}
	for in, want := range cases {
		logger, err := New(in, "json", "asset-tracker")
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(want), in)
		if want > zapcore.DebugLevel {
			assert.False(t, logger.Core().Enabled(want-1), in)
		}
	}
}

func TestNewConsole(t *testing.T) {
	logger, err := New("debug", "console", "")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
