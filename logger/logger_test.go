package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		want      zapcore.Level
	}{
		{"no flags maps to warn", VerbosityUser, zapcore.WarnLevel},
		{"-v maps to info", VerbosityInfo, zapcore.InfoLevel},
		{"-vv maps to debug", VerbosityDebug, zapcore.DebugLevel},
		{"-vvv maps to debug", VerbosityTrace, zapcore.DebugLevel},
		{"excess flags map to debug", 7, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity))
		})
	}
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "User", LevelName(0))
	assert.Equal(t, "Info (-v)", LevelName(1))
	assert.Equal(t, "Debug (-vv)", LevelName(2))
	assert.Equal(t, "Trace (-vvv)", LevelName(3))
	assert.Equal(t, "Trace (-vvv)", LevelName(9))
}

func TestInitialize(t *testing.T) {
	t.Run("console output", func(t *testing.T) {
		require.NoError(t, Initialize(false, VerbosityInfo))
		require.NotNil(t, Logger)
		assert.False(t, JSONOutput)
	})

	t.Run("json output", func(t *testing.T) {
		require.NoError(t, Initialize(true, VerbosityDebug))
		require.NotNil(t, Logger)
		assert.True(t, JSONOutput)
	})
}

func TestHelpersNilSafe(t *testing.T) {
	// Helpers must not panic even if Logger was never initialized.
	saved := Logger
	Logger = nil
	defer func() { Logger = saved }()

	assert.NotPanics(t, func() {
		Info("a")
		Infof("%s", "a")
		Infow("a", "k", "v")
		Error("a")
		Errorf("%s", "a")
		Errorw("a", "k", "v")
		Warnw("a", "k", "v")
		Debugw("a", "k", "v")
		Cleanup()
	})
}
