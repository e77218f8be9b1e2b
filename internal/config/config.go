// Package config provides configuration management for the AssetWatch server.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the full server configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	SQLite    SQLiteConfig    `koanf:"sqlite"`
	Logging   LoggingConfig   `koanf:"logging"`
	Dashboard DashboardConfig `koanf:"dashboard"`
	History   HistoryConfig   `koanf:"history"`
	Zabbix    ZabbixConfig    `koanf:"zabbix"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port         int           `koanf:"port"`
	Host         string        `koanf:"host"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// SQLiteConfig holds the metadata store settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Debug bool `koanf:"debug"`
}

// DashboardConfig controls alert aggregation caching.
type DashboardConfig struct {
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// HistoryConfig controls the progressive chart backfill behaviour.
type HistoryConfig struct {
	InitialWindow time.Duration `koanf:"initial_window"`
	ChunkWindow   time.Duration `koanf:"chunk_window"`
	MaxLookback   time.Duration `koanf:"max_lookback"`
	InitialDelay  time.Duration `koanf:"initial_delay"`
	ChunkDelay    time.Duration `koanf:"chunk_delay"`
	MaxPoints     int           `koanf:"max_points"`
}

// ZabbixConfig holds the monitoring backend connection settings.
type ZabbixConfig struct {
	URL      string        `koanf:"url"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	Timeout  time.Duration `koanf:"timeout"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8125,
			Host:         "0.0.0.0",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		SQLite: SQLiteConfig{
			Path: "assetwatch.db",
		},
		Dashboard: DashboardConfig{
			CacheTTL: 15 * time.Second,
		},
		History: HistoryConfig{
			InitialWindow: 72 * time.Hour,
			ChunkWindow:   720 * time.Hour,
			MaxLookback:   8760 * time.Hour,
			InitialDelay:  2200 * time.Millisecond,
			ChunkDelay:    4800 * time.Millisecond,
			MaxPoints:     1200,
		},
		Zabbix: ZabbixConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// Load reads configuration from an optional TOML file and ASSETWATCH_*
// environment variables, layered over the defaults.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	cfg := Default()

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// ASSETWATCH_SERVER_PORT -> server.port
	if err := k.Load(env.Provider("ASSETWATCH_", ".", func(s string) string {
		return envToKey(s[len("ASSETWATCH_"):])
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// envToKey converts an environment variable suffix to a config key,
// e.g. SERVER_PORT -> server.port.
func envToKey(s string) string {
	result := ""
	for _, c := range s {
		if c == '_' {
			result += "."
		} else if c >= 'A' && c <= 'Z' {
			result += string(c - 'A' + 'a')
		} else {
			result += string(c)
		}
	}
	return result
}
