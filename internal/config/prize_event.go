package config

import "time"

// PrizeEventConfig holds prize event service configuration
type PrizeEventConfig struct {
	Server     ServerConfig
	Redis      RedisConfig
	Database   DatabaseConfig
	RepoType   string // memory or redis, for the pending wager store
	AdminToken string // shared secret gating the override API
	Settings   EventSettings
}

// EventSettings tunes the round schedule. Changing RoundDurationSec or
// BaseRound on a live deployment renumbers every future round, so these
// exist for tests and staging, not production knobs.
type EventSettings struct {
	RoundDurationSec int
	BaseRound        int64
	SettleWindowSec  int
}

// LoadPrizeEventConfig loads configuration for the prize event service
func LoadPrizeEventConfig() *PrizeEventConfig {
	redisConfig := RedisConfig{
		Host: getEnv("REDIS_HOST", "localhost"),
		Port: getEnv("REDIS_PORT", "6379"),
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "daisy_user"),
		Password: getEnv("DB_PASSWORD", "daisy_pass"),
		Name:     getEnv("DB_NAME", "daisy_db"),
	}

	return &PrizeEventConfig{
		Server: ServerConfig{
			Port:     getEnv("EVENT_HTTP_PORT", "8080"),
			Name:     "prize-event-service",
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Redis:      redisConfig,
		Database:   dbConfig,
		RepoType:   getEnv("EVENT_REPO_TYPE", "redis"),
		AdminToken: getEnv("EVENT_ADMIN_TOKEN", ""),
		Settings: EventSettings{
			RoundDurationSec: getEnvInt("EVENT_ROUND_DURATION", 65),
			BaseRound:        getEnvInt64("EVENT_BASE_ROUND", 1824231),
			SettleWindowSec:  getEnvInt("EVENT_SETTLE_WINDOW", 5),
		},
	}
}

// Schedule converts the settings into engine units
func (s EventSettings) RoundDuration() time.Duration {
	return time.Duration(s.RoundDurationSec) * time.Second
}
