package utilities

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSnowflakeIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewSnowflakeID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSnowflakeBadNodeFallsBackToKSUID(t *testing.T) {
	// snowflake nodes are limited to 10 bits
	id := NewSnowflakeIDWithNode(5000)
	require.Len(t, id, 27)
}

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("LOG_DEV", "1")
	t.Setenv("LOG_LEVEL", "")
	cfg := ConfigFromEnv()
	require.True(t, cfg.Dev)
	require.Equal(t, "debug", cfg.Level)
	require.Equal(t, 14, cfg.MaxAgeDays)
}

func TestLevelFromString(t *testing.T) {
	require.Equal(t, zapcore.WarnLevel, levelFromString("warning"))
	require.Equal(t, zapcore.InfoLevel, levelFromString("loud"))
}
