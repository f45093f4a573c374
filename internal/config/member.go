package config

import "time"

// MemberConfig holds member service configuration
type MemberConfig struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Settings MemberSettings
}

type MemberSettings struct {
	StartingBalance int64 // diamonds granted on registration
}

// LoadMemberConfig loads configuration for the member service
func LoadMemberConfig() *MemberConfig {
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "daisy_user"),
		Password: getEnv("DB_PASSWORD", "daisy_pass"),
		Name:     getEnv("DB_NAME", "daisy_db"),
	}

	return &MemberConfig{
		Server: ServerConfig{
			Name: "member-service",
		},
		Database: dbConfig,
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", "dev-secret-key"),
			Duration: 24 * time.Hour,
		},
		Settings: MemberSettings{
			StartingBalance: getEnvInt64("MEMBER_STARTING_BALANCE", 10000),
		},
	}
}
