// Package config loads CLI configuration from defaults, an airlens.yaml
// file, environment variables, and flags, in increasing precedence.
package config

import (
	"github.com/airlens/airlens/internal/adapter"
)

// Config holds all CLI configuration options.
type Config struct {
	Driver     string `koanf:"driver"`
	DBHost     string `koanf:"db_host"`
	DBPort     int    `koanf:"db_port"`
	DBName     string `koanf:"db_name"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBSSLMode  string `koanf:"db_sslmode"`
	DBPath     string `koanf:"db_path"`
	Table      string `koanf:"table"`
	Output     string `koanf:"output"`
	LogFile    string `koanf:"log_file"`
	Verbose    bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultDriver = "postgres"
	DefaultHost   = "localhost"
	DefaultPort   = 5432
	DefaultTable  = "listings"
	DefaultOutput = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// AdapterConfig converts the loaded configuration into adapter connection
// settings. Credentials have ${VAR} references expanded.
func (c *Config) AdapterConfig() adapter.Config {
	return adapter.Config{
		Driver:   c.Driver,
		Path:     c.DBPath,
		Host:     expandEnvVars(c.DBHost),
		Port:     c.DBPort,
		Database: expandEnvVars(c.DBName),
		Username: expandEnvVars(c.DBUser),
		Password: expandEnvVars(c.DBPassword),
		SSLMode:  c.DBSSLMode,
	}
}
