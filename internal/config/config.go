package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Session   SessionConfig
	Game      GameConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host string
	Port string
	Env  string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SessionConfig holds demo session token configuration
type SessionConfig struct {
	Secret      string
	TokenExpire time.Duration
}

// GameConfig holds the venue economics. Defaults match the game rules:
// 30 bps trade fee, 10 bps flash-loan fee, 150% minimum collateralization.
type GameConfig struct {
	TradeFeeRate       float64
	FlashLoanFeeRate   float64
	MinCollateralRatio float64
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			Secret:      getEnv("SESSION_SECRET", ""),
			TokenExpire: time.Duration(getEnvAsInt("SESSION_TOKEN_EXPIRE_HOURS", 24)) * time.Hour,
		},
		Game: GameConfig{
			TradeFeeRate:       getEnvAsFloat("GAME_TRADE_FEE_RATE", 0.003),
			FlashLoanFeeRate:   getEnvAsFloat("GAME_FLASH_LOAN_FEE_RATE", 0.001),
			MinCollateralRatio: getEnvAsFloat("GAME_MIN_COLLATERAL_RATIO", 1.5),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}, ","),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 120),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required fields
	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	if cfg.Game.TradeFeeRate < 0 || cfg.Game.TradeFeeRate >= 1 {
		return nil, fmt.Errorf("GAME_TRADE_FEE_RATE must be in [0, 1)")
	}

	if cfg.Game.FlashLoanFeeRate < 0 || cfg.Game.FlashLoanFeeRate >= 1 {
		return nil, fmt.Errorf("GAME_FLASH_LOAN_FEE_RATE must be in [0, 1)")
	}

	if cfg.Game.MinCollateralRatio < 1 {
		return nil, fmt.Errorf("GAME_MIN_COLLATERAL_RATIO must be at least 1")
	}

	return cfg, nil
}

// Address returns the full server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if running in development mode
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string, separator string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, separator)
}
