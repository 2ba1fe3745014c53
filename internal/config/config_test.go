package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, 0.003, cfg.Game.TradeFeeRate)
	assert.Equal(t, 0.001, cfg.Game.FlashLoanFeeRate)
	assert.Equal(t, 1.5, cfg.Game.MinCollateralRatio)
	assert.Equal(t, 120, cfg.RateLimit.RequestsPerMinute)
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GAME_TRADE_FEE_RATE", "0.01")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 0.01, cfg.Game.TradeFeeRate)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsBadGameParams(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")

	t.Setenv("GAME_TRADE_FEE_RATE", "1.5")
	_, err := Load()
	assert.Error(t, err)
	t.Setenv("GAME_TRADE_FEE_RATE", "")

	t.Setenv("GAME_MIN_COLLATERAL_RATIO", "0.5")
	_, err = Load()
	assert.Error(t, err)
}
