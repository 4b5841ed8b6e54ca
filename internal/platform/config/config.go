package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL      string
	IsProduction     bool
	SnapshotInterval int64  // Events between aggregate snapshots
	MigrationsPath   string // file:// source for golang-migrate
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("SNAPSHOT_INTERVAL", 50)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:      viper.GetString("PGSQL_URL"),
		IsProduction:     viper.GetBool("IS_PRODUCTION"),
		SnapshotInterval: viper.GetInt64("SNAPSHOT_INTERVAL"),
		MigrationsPath:   viper.GetString("MIGRATIONS_PATH"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.SnapshotInterval <= 0 {
		log.Printf("Warning: invalid SNAPSHOT_INTERVAL, defaulting to 50")
		cfg.SnapshotInterval = 50
	}

	return cfg, nil
}
