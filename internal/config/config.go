// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort                = 8080
	defaultServerHost                = "0.0.0.0"
	defaultReadTimeout               = 30 * time.Second
	defaultWriteTimeout              = 30 * time.Second
	defaultDatabasePath              = "./data/holos.db"
	defaultDatabaseConnectionTimeout = 5 * time.Second
	defaultLogLevel                  = "info"
	defaultLogPretty                 = false
	defaultPollInterval              = 5 * time.Second
	defaultRequestTimeout            = 15 * time.Second
	defaultSimulationBaseURL         = "https://mediaplus.broadcast"
	defaultActivationBaseURL         = ""
	defaultTokenTTL                  = 24 * time.Hour
	defaultRedisAddr                 = "localhost:6379"
	envPrefix                        = "HOLOS"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Broadcast BroadcastConfig
	Sync      SyncConfig
	Auth      AuthConfig
	Media     MediaConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path              string
	ConnectionTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// BroadcastConfig holds settings for the external FFmpeg orchestration API.
// An empty APIBaseURL or an absent/test API key puts the client in simulation
// mode, which synthesizes deterministic responses without network calls.
type BroadcastConfig struct {
	APIBaseURL        string
	APIKey            string
	SimulationBaseURL string
	PollInterval      time.Duration
	RequestTimeout    time.Duration
}

// SyncConfig holds the remote playlist mirror configuration
type SyncConfig struct {
	Enabled   bool
	RedisAddr string
	RedisDB   int
}

// AuthConfig holds entitlement validation and session token configuration
type AuthConfig struct {
	Enabled           bool
	JWTSecret         string
	TokenTTL          time.Duration
	ActivationBaseURL string
	LicenseBaseURL    string
}

// MediaConfig holds media catalog configuration
type MediaConfig struct {
	SupportedFormats []string
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/holos")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.connectiontimeout", defaultDatabaseConnectionTimeout)

	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	v.SetDefault("broadcast.apibaseurl", "")
	v.SetDefault("broadcast.apikey", "")
	v.SetDefault("broadcast.simulationbaseurl", defaultSimulationBaseURL)
	v.SetDefault("broadcast.pollinterval", defaultPollInterval)
	v.SetDefault("broadcast.requesttimeout", defaultRequestTimeout)

	v.SetDefault("sync.enabled", false)
	v.SetDefault("sync.redisaddr", defaultRedisAddr)
	v.SetDefault("sync.redisdb", 0)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttl", defaultTokenTTL)
	v.SetDefault("auth.activationbaseurl", defaultActivationBaseURL)
	v.SetDefault("auth.licensebaseurl", "")

	v.SetDefault("media.supportedformats", []string{"mp4", "mkv", "avi", "mov", "webm"})
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}
	if c.Database.ConnectionTimeout <= 0 {
		return fmt.Errorf("invalid database connection timeout: %v (must be > 0)", c.Database.ConnectionTimeout)
	}

	if c.Broadcast.PollInterval < time.Second {
		return fmt.Errorf("invalid poll interval: %v (must be >= 1s)", c.Broadcast.PollInterval)
	}
	if c.Broadcast.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout: %v (must be > 0)", c.Broadcast.RequestTimeout)
	}

	if c.Sync.Enabled && c.Sync.RedisAddr == "" {
		return fmt.Errorf("sync is enabled but no redis address is configured")
	}

	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth is enabled but no JWT secret is configured")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	return nil
}

// contains checks if a string slice contains a specific value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
