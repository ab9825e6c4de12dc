package config

import "time"

// Config holds runtime settings for the chat CLI.
//
// Fields:
//   - ServerURL: base URL of the gateway, e.g. http://127.0.0.1:8080.
//   - DatabasePath: local SQLite file caching the signed-in credential.
//   - DialTimeout: bound on HTTP calls and the WebSocket handshake.
type Config struct {
	ServerURL    string
	DatabasePath string
	DialTimeout  time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabasePath = "gophchat.db"
	c.DialTimeout = 5 * time.Second
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
