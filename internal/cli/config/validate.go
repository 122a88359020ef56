package config

import (
	"fmt"
	"strings"
)

// MissingKeysError reports required configuration keys that were not set
// anywhere in the precedence chain. It is fatal at startup.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("missing required configuration: %s (set in airlens.yaml or the environment)",
		strings.Join(e.Keys, ", "))
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Driver == "" {
		return &MissingKeysError{Keys: []string{"driver"}}
	}
	if c.Table == "" {
		return &MissingKeysError{Keys: []string{"table"}}
	}

	// Server databases need to know what to connect to; embedded ones
	// default to an in-memory database when db_path is unset.
	if c.Driver == "postgres" && c.DBName == "" {
		return &MissingKeysError{Keys: []string{"db_name"}}
	}
	return nil
}
