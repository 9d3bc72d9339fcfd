package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 14*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 24*time.Hour, cfg.VerifyTTL)
	assert.False(t, cfg.AutoLoginAfterRegister)
	assert.Equal(t, 5, cfg.RateLimitPerMin)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "30M")
	t.Setenv("REFRESH_TOKEN_TTL", "1w")
	t.Setenv("VERIFY_TOKEN_TTL", "2days")
	t.Setenv("AUTO_LOGIN_AFTER_REGISTER", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 48*time.Hour, cfg.VerifyTTL)
	assert.True(t, cfg.AutoLoginAfterRegister)
}

func TestLoad_BadTTL(t *testing.T) {
	tests := []struct {
		name    string
		envVar  string
		value   string
		wantSub string
	}{
		{"access missing unit", "ACCESS_TOKEN_TTL", "15", "ACCESS_TOKEN_TTL"},
		{"refresh unknown unit", "REFRESH_TOKEN_TTL", "3fortnights", "REFRESH_TOKEN_TTL"},
		{"verify garbage", "VERIFY_TOKEN_TTL", "soon", "VERIFY_TOKEN_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantSub)
		})
	}
}
