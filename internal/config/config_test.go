package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
		},
		Database: DatabaseConfig{
			Path:              "./data/holos.db",
			ConnectionTimeout: defaultDatabaseConnectionTimeout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: false,
		},
		Broadcast: BroadcastConfig{
			SimulationBaseURL: defaultSimulationBaseURL,
			PollInterval:      defaultPollInterval,
			RequestTimeout:    defaultRequestTimeout,
		},
		Sync: SyncConfig{
			Enabled:   false,
			RedisAddr: defaultRedisAddr,
		},
		Auth: AuthConfig{
			Enabled:  false,
			TokenTTL: defaultTokenTTL,
		},
		Media: MediaConfig{
			SupportedFormats: []string{"mp4", "mkv"},
		},
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != defaultServerPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, defaultServerPort)
	}
	if cfg.Server.Host != defaultServerHost {
		t.Errorf("Server.Host = %s, want %s", cfg.Server.Host, defaultServerHost)
	}

	if cfg.Database.Path != defaultDatabasePath {
		t.Errorf("Database.Path = %s, want %s", cfg.Database.Path, defaultDatabasePath)
	}

	if cfg.Logging.Level != defaultLogLevel {
		t.Errorf("Logging.Level = %s, want %s", cfg.Logging.Level, defaultLogLevel)
	}
	if cfg.Logging.Pretty != defaultLogPretty {
		t.Errorf("Logging.Pretty = %v, want %v", cfg.Logging.Pretty, defaultLogPretty)
	}

	if cfg.Broadcast.APIBaseURL != "" {
		t.Errorf("Broadcast.APIBaseURL = %s, want empty", cfg.Broadcast.APIBaseURL)
	}
	if cfg.Broadcast.SimulationBaseURL != defaultSimulationBaseURL {
		t.Errorf("Broadcast.SimulationBaseURL = %s, want %s", cfg.Broadcast.SimulationBaseURL, defaultSimulationBaseURL)
	}
	if cfg.Broadcast.PollInterval != defaultPollInterval {
		t.Errorf("Broadcast.PollInterval = %v, want %v", cfg.Broadcast.PollInterval, defaultPollInterval)
	}
	if cfg.Broadcast.RequestTimeout != defaultRequestTimeout {
		t.Errorf("Broadcast.RequestTimeout = %v, want %v", cfg.Broadcast.RequestTimeout, defaultRequestTimeout)
	}

	if cfg.Sync.Enabled {
		t.Error("Sync.Enabled = true, want false")
	}
	if cfg.Sync.RedisAddr != defaultRedisAddr {
		t.Errorf("Sync.RedisAddr = %s, want %s", cfg.Sync.RedisAddr, defaultRedisAddr)
	}

	if cfg.Auth.Enabled {
		t.Error("Auth.Enabled = true, want false")
	}
	if cfg.Auth.TokenTTL != defaultTokenTTL {
		t.Errorf("Auth.TokenTTL = %v, want %v", cfg.Auth.TokenTTL, defaultTokenTTL)
	}

	if len(cfg.Media.SupportedFormats) == 0 {
		t.Error("Media.SupportedFormats is empty, want defaults")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "zero read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "zero write timeout",
			mutate:  func(c *Config) { c.Server.WriteTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "zero database timeout",
			mutate:  func(c *Config) { c.Database.ConnectionTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "poll interval below one second",
			mutate:  func(c *Config) { c.Broadcast.PollInterval = 500 * time.Millisecond },
			wantErr: true,
		},
		{
			name:    "zero request timeout",
			mutate:  func(c *Config) { c.Broadcast.RequestTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "sync enabled without redis address",
			mutate:  func(c *Config) { c.Sync.Enabled = true; c.Sync.RedisAddr = "" },
			wantErr: true,
		},
		{
			name:    "sync enabled with redis address",
			mutate:  func(c *Config) { c.Sync.Enabled = true },
			wantErr: false,
		},
		{
			name:    "auth enabled without secret",
			mutate:  func(c *Config) { c.Auth.Enabled = true },
			wantErr: true,
		},
		{
			name:    "auth enabled with secret",
			mutate:  func(c *Config) { c.Auth.Enabled = true; c.Auth.JWTSecret = "secret" },
			wantErr: false,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
