// Package config defines application configuration loaded from defaults, an
// optional YAML file, and environment variables.
package config

import "time"

// Config holds the application configuration.
type Config struct {
	App     AppConfig     `koanf:"app"`
	Logger  LoggerConfig  `koanf:"logger"`
	Server  ServerConfig  `koanf:"server"`
	Catalog CatalogConfig `koanf:"catalog"`
	Remote  RemoteConfig  `koanf:"remote"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `koanf:"environment"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// CatalogConfig holds third-party catalog API configuration.
type CatalogConfig struct {
	BaseURL string `koanf:"base_url"`
	// PageSize is the catalog page size used for listings and searches.
	PageSize int `koanf:"page_size"`
	// RetryAttempts and RetryBaseDelay parameterize transient-failure retries.
	RetryAttempts  int           `koanf:"retry_attempts"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
	// RPS and Burst bound outbound request rate toward the catalog API.
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// RemoteConfig holds remote user-state document store configuration.
type RemoteConfig struct {
	// Path is the badger database directory.
	Path string `koanf:"path"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			ReadTimeout: 15 * time.Second,
			// No write timeout: the event stream endpoint holds its
			// response open indefinitely.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		Catalog: CatalogConfig{
			BaseURL:        "https://api.jikan.moe/v4",
			PageSize:       12,
			RetryAttempts:  3,
			RetryBaseDelay: time.Second,
			RPS:            1.0,
			Burst:          3,
		},
		Remote: RemoteConfig{
			Path: "./data/userstate",
		},
	}
}
