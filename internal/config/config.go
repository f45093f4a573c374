// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/jiyoung145900-png/daisy-vip/pkg/logger"
)

// MonolithConfig holds all configuration for monolith mode
type MonolithConfig struct {
	Member     MemberConfig
	PrizeEvent PrizeEventConfig
}

// LoadMonolithConfig loads all configurations for monolith mode. A .env file
// in the working directory is optional; real deployments set the environment
// directly.
func LoadMonolithConfig() *MonolithConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.WarnGlobal().Err(err).Msg("Failed to load .env file")
	}

	return &MonolithConfig{
		Member:     *LoadMemberConfig(),
		PrizeEvent: *LoadPrizeEventConfig(),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}
