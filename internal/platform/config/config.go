package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// minSchedulerPollInterval keeps a misconfigured scheduler from hammering the
// database.
const minSchedulerPollInterval = 10 * time.Second

// Config holds application configuration.
type Config struct {
	DatabaseURL           string
	Port                  string
	IsProduction          bool
	JWTSecret             string
	SchedulerPollInterval time.Duration
	BalancingSettingKey   string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("SCHEDULER_POLL_INTERVAL", "60s")
	viper.SetDefault("BALANCING_ACCOUNT_SETTING_KEY", "BALANCING_ACCOUNT_ID")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	pollIntervalStr := viper.GetString("SCHEDULER_POLL_INTERVAL")
	pollInterval, err := time.ParseDuration(pollIntervalStr)
	if err != nil {
		pollInterval = 60 * time.Second
		log.Printf("Warning: Invalid value for SCHEDULER_POLL_INTERVAL ('%s'). Defaulting to %s.\n", pollIntervalStr, pollInterval.String())
	}
	if pollInterval < minSchedulerPollInterval {
		log.Printf("Warning: SCHEDULER_POLL_INTERVAL %s is below the minimum. Using %s.\n", pollInterval.String(), minSchedulerPollInterval.String())
		pollInterval = minSchedulerPollInterval
	}
	cfg.SchedulerPollInterval = pollInterval

	cfg.BalancingSettingKey = viper.GetString("BALANCING_ACCOUNT_SETTING_KEY")

	return cfg, nil
}
