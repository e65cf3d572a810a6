package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaultLoggerIsUsable(t *testing.T) {
	require.NotNil(t, L)
	assert.NotPanics(t, func() { L.Info("before init") })
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		production bool
		wantLevel  zapcore.Level
	}{
		{name: "debug console", level: "debug", production: false, wantLevel: zapcore.DebugLevel},
		{name: "warn json", level: "warn", production: true, wantLevel: zapcore.WarnLevel},
		{name: "invalid falls back to info", level: "loud", production: true, wantLevel: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, InitLogger(tt.level, tt.production))
			assert.True(t, L.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, L.Core().Enabled(tt.wantLevel-1))
			}
			Sync()
		})
	}
}
