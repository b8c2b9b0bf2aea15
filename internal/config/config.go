package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Lending  LendingConfig  `mapstructure:"lending"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

// LendingConfig holds fallback policy values used when the settings table
// carries no row for a key. The settings table remains the source of truth.
type LendingConfig struct {
	DefaultLoanDays       int     `mapstructure:"default_loan_days"`
	FinePerDay            float64 `mapstructure:"fine_per_day"`
	MaxLoansPerUser       int     `mapstructure:"max_loans_per_user"`
	GraceDays             int     `mapstructure:"grace_days"`
	ReservationWindowDays int     `mapstructure:"reservation_window_days"`
	SweepIntervalMinutes  int     `mapstructure:"sweep_interval_minutes"`
	StoreTimeoutSeconds   int     `mapstructure:"store_timeout_seconds"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.biblio")
	viper.AddConfigPath("/etc/biblio")

	viper.SetEnvPrefix("BIBLIO")
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("lending.default_loan_days", 14)
	viper.SetDefault("lending.fine_per_day", 0.50)
	viper.SetDefault("lending.max_loans_per_user", 5)
	viper.SetDefault("lending.grace_days", 0)
	viper.SetDefault("lending.reservation_window_days", 7)
	viper.SetDefault("lending.sweep_interval_minutes", 5)
	viper.SetDefault("lending.store_timeout_seconds", 5)

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, use defaults and environment variables
			fmt.Printf("Config file not found, using defaults and environment variables\n")
		}
	}

	// Override with environment variables
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		viper.Set("database.url", dbURL)
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		viper.Set("redis.url", redisURL)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
