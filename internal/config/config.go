package config

import "time"

// Config is the root configuration for Beacon.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Hub     HubConfig     `yaml:"hub"`
	Journal JournalConfig `yaml:"journal"`
	MCP     MCPConfig     `yaml:"mcp"`
	Tunnel  TunnelConfig  `yaml:"tunnel"`
}

type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	PublicURL      string        `yaml:"public_url"`
	LogLevel       string        `yaml:"log_level"`
	LogFile        string        `yaml:"log_file"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

type HubConfig struct {
	Capacity       int `yaml:"capacity"`
	BufferSize     int `yaml:"buffer_size"`
	MaxSubscribers int `yaml:"max_subscribers"`
}

type JournalConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

type TunnelConfig struct {
	Enabled   bool   `yaml:"enabled"`
	AuthToken string `yaml:"authtoken"`
	Domain    string `yaml:"domain"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           5001,
			LogLevel:       "info",
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   65536, // 64KB
			WriteTimeout:   10 * time.Second,
		},
		Hub: HubConfig{
			Capacity:   100,
			BufferSize: 64,
		},
		Journal: JournalConfig{
			Path:          "~/.config/beacon/journal.db",
			RetentionDays: 7,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
	}
}
