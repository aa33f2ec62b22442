// Package config loads keepd's runtime configuration from flags,
// environment variables and an optional config file via spf13/viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable of a running keepd server.
type Config struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	MaxClients int           `mapstructure:"max_clients"`
	Timeout    time.Duration `mapstructure:"timeout"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	SnapshotPath     string        `mapstructure:"snapshot_path"`
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`
	EnablePersist    bool          `mapstructure:"enable_persist"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DefaultConfig returns keepd's documented defaults: endpoint
// 127.0.0.1:31337, concurrency cap 1024.
func DefaultConfig() *Config {
	return &Config{
		Host:             "127.0.0.1",
		Port:             31337,
		MaxClients:       1024,
		Timeout:          30 * time.Second,
		LogLevel:         "info",
		LogFormat:        "text",
		SnapshotPath:     "./keepd.snapshot",
		SnapshotInterval: 0, // 0 disables; periodic snapshots also need EnablePersist
		EnablePersist:    false,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     30 * time.Second,
	}
}

// Load reads configuration from (in ascending priority) defaults, an
// optional keepd.yaml config file, KEEPD_* environment variables, and
// whatever flags the caller has already bound into viper.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("keepd")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/keepd/")
	viper.AddConfigPath("$HOME/.keepd")

	viper.SetEnvPrefix("KEEPD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("max_clients", cfg.MaxClients)
	viper.SetDefault("timeout", cfg.Timeout)
	viper.SetDefault("log_level", cfg.LogLevel)
	viper.SetDefault("log_format", cfg.LogFormat)
	viper.SetDefault("snapshot_path", cfg.SnapshotPath)
	viper.SetDefault("snapshot_interval", cfg.SnapshotInterval)
	viper.SetDefault("enable_persist", cfg.EnablePersist)
	viper.SetDefault("read_timeout", cfg.ReadTimeout)
	viper.SetDefault("write_timeout", cfg.WriteTimeout)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations that cannot produce a running
// server.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Port)
	}
	if c.MaxClients < 1 {
		return fmt.Errorf("max_clients must be at least 1")
	}

	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	ok := false
	for _, lvl := range validLevels {
		if c.LogLevel == lvl {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("invalid log_level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLevels, ", "))
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("keepd config: %s:%d, max_clients=%d, log_level=%s",
		c.Host, c.Port, c.MaxClients, c.LogLevel)
}
