package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", strings.Repeat("s", 32))

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8431", cfg.HTTPAddr)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Equal(t, 30*time.Second, cfg.DocumentTimeout)
	require.Equal(t, 30, cfg.LeadRatePerMinute)
	require.False(t, cfg.CookieSecure)
	require.False(t, cfg.DBAutoMigrate)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", strings.Repeat("s", 40))
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("LEAD_RATE_PER_MINUTE", "5")
	t.Setenv("BOOKING_URL", "https://calendly.com/declic/rdv")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTPAddr)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
	require.True(t, cfg.CookieSecure)
	require.Equal(t, 5, cfg.LeadRatePerMinute)
	require.Equal(t, "https://calendly.com/declic/rdv", cfg.BookingURL)
}

func TestFromEnvRejectsMissingOrShortSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	_, err := FromEnv()
	require.Error(t, err)

	t.Setenv("SESSION_SECRET", "short")
	_, err = FromEnv()
	require.ErrorContains(t, err, "SESSION_SECRET")
}
