package config

import "fmt"

// StoreConfig defines settings for run history persistence.
type StoreConfig struct {
	// Enabled turns on schedule persistence.
	Enabled bool `json:"enabled"`
	// Path is the SQLite database file location.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "bessopt.db"
	}
}

// Validate checks mandatory fields.
func (c StoreConfig) Validate() error {
	if c.Enabled && c.Path == "" {
		return fmt.Errorf("path is required when the store is enabled")
	}
	return nil
}
