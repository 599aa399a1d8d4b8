package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the top-level modpanel configuration file.
type YAMLConfig struct {
	API     APIConfig     `yaml:"api"`
	Server  ServerConfig  `yaml:"server"`
	State   StateConfig   `yaml:"state"`
	MCP     MCPConfig     `yaml:"mcp"`
	Logging LoggingConfig `yaml:"log"`
}

// APIConfig points the dashboard at the moderation backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Version string `yaml:"version"`
	Timeout string `yaml:"timeout"`
}

// ServerConfig controls the local dashboard server.
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	CORSOrigins     []string `yaml:"cors_origins"`
	RefreshInterval string   `yaml:"refresh_interval"`
	LoginRateLimit  int      `yaml:"login_rate_limit"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	SecureCookies   bool     `yaml:"secure_cookies"`
}

// StateConfig selects where the admin session is kept. An empty DSN uses
// modpanel.db in the data directory.
type StateConfig struct {
	DSN string `yaml:"dsn"`
}

// MCPConfig controls the MCP (Model Context Protocol) server.
type MCPConfig struct {
	Transport string `yaml:"transport"`
	Port      int    `yaml:"port"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LoadYAMLConfig reads and parses a YAML configuration file. Environment
// variables referenced as ${VAR_NAME} in the file are expanded before parsing.
func LoadYAMLConfig(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand environment variables: ${VAR_NAME}
	content := os.ExpandEnv(string(data))

	cfg := DefaultYAMLConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// DefaultYAMLConfig returns a YAMLConfig pre-filled with sensible defaults.
func DefaultYAMLConfig() *YAMLConfig {
	return &YAMLConfig{
		API: APIConfig{
			BaseURL: "http://localhost:3000",
			Version: "/api/v1",
			Timeout: "30s",
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8090,
			CORSOrigins:     []string{"*"},
			RefreshInterval: "1m",
			LoginRateLimit:  10,
			ShutdownTimeout: "15s",
		},
		MCP: MCPConfig{
			Transport: "stdio",
			Port:      3001,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// WriteDefaultConfig writes the default configuration to a YAML file.
func WriteDefaultConfig(path string) error {
	cfg := DefaultYAMLConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
