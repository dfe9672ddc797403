package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the top-level jambearum configuration file.
type YAMLConfig struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	App      AppConfig      `yaml:"app" mapstructure:"app"`
	Auth     AuthConfig     `yaml:"auth" mapstructure:"auth"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	DataDir  string         `yaml:"data_dir" mapstructure:"data_dir"`
	Upload   UploadConfig   `yaml:"upload" mapstructure:"upload"`
	MCP      MCPConfig      `yaml:"mcp" mapstructure:"mcp"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig controls the HTTP server behavior.
type ServerConfig struct {
	Host            string     `yaml:"host" mapstructure:"host"`
	Port            int        `yaml:"port" mapstructure:"port"`
	MaxBodySize     string     `yaml:"max_body_size" mapstructure:"max_body_size"`
	ShutdownTimeout string     `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	EnableUI        bool       `yaml:"enable_ui" mapstructure:"enable_ui"`
	CORS            CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// CORSConfig controls cross-origin resource sharing settings.
type CORSConfig struct {
	Origins []string `yaml:"origins" mapstructure:"origins"`
}

// AppConfig holds deployment-wide settings.
type AppConfig struct {
	// Env is "development" or "production". Production marks the session
	// cookie Secure.
	Env       string `yaml:"env" mapstructure:"env"`
	PublicURL string `yaml:"public_url" mapstructure:"public_url"`
}

// AuthConfig controls admin session settings. The session lifetime (24h)
// and the bcrypt cost are constants of the session service, not settings.
type AuthConfig struct {
	JWTSecret      string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	LoginRateLimit int    `yaml:"login_rate_limit" mapstructure:"login_rate_limit"`
	RedisURL       string `yaml:"redis_url" mapstructure:"redis_url"`
}

// DatabaseConfig selects the backing database.
type DatabaseConfig struct {
	Driver string         `yaml:"driver" mapstructure:"driver"`
	DSN    string         `yaml:"dsn" mapstructure:"dsn"`
	Pool   PoolYAMLConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolYAMLConfig controls the connection pool for postgres and mysql.
type PoolYAMLConfig struct {
	MaxOpenConns    int    `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

// UploadConfig controls where uploaded images are written and served from.
type UploadConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// MCPConfig controls the MCP (Model Context Protocol) server.
type MCPConfig struct {
	Transport string `yaml:"transport" mapstructure:"transport"`
	Port      int    `yaml:"port" mapstructure:"port"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LoadYAMLConfig reads and parses a YAML configuration file. Environment
// variables referenced as ${VAR_NAME} in the file are expanded before parsing.
// Keys missing from the file keep their default values; unknown keys are
// rejected.
func LoadYAMLConfig(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	content := os.ExpandEnv(string(data))

	cfg := DefaultYAMLConfig()
	dec := yaml.NewDecoder(strings.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// DefaultYAMLConfig returns a YAMLConfig pre-filled with sensible defaults.
func DefaultYAMLConfig() *YAMLConfig {
	return &YAMLConfig{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			MaxBodySize:     "10MB",
			ShutdownTimeout: "30s",
			EnableUI:        true,
			CORS: CORSConfig{
				Origins: []string{"*"},
			},
		},
		App: AppConfig{
			Env: EnvDevelopment,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
		},
		Upload: UploadConfig{
			BaseURL: "/uploads",
		},
		MCP: MCPConfig{
			Transport: "stdio",
			Port:      3001,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
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
