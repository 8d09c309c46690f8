package config

import "time"

// Config holds runtime settings for the notekeeper CLI.
//
// Fields:
//   - ServerURL: base URL of the sync server.
//   - DatabaseDSN: path of the local SQLite database.
//   - SyncInterval: how often auto-sync runs a cycle when enabled.
//
// Units: SyncInterval is a time.Duration (e.g., 30*time.Second).
type Config struct {
	ServerURL    string
	DatabaseDSN  string
	SyncInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabaseDSN = "notes.db"
	c.SyncInterval = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
