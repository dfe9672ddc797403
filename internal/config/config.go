package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, so auth.jwt_secret
// is read from JAMBEARUM_AUTH_JWT_SECRET.
const EnvPrefix = "JAMBEARUM"

// Deployment environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Bind prepares v for use with Load: it registers every default so that
// environment overrides reach keys absent from the config file.
func Bind(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultYAMLConfig()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.max_body_size", d.Server.MaxBodySize)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.enable_ui", d.Server.EnableUI)
	v.SetDefault("server.cors.origins", d.Server.CORS.Origins)
	v.SetDefault("app.env", d.App.Env)
	v.SetDefault("app.public_url", d.App.PublicURL)
	v.SetDefault("auth.jwt_secret", d.Auth.JWTSecret)
	v.SetDefault("auth.login_rate_limit", d.Auth.LoginRateLimit)
	v.SetDefault("auth.redis_url", d.Auth.RedisURL)
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.pool.max_open_conns", d.Database.Pool.MaxOpenConns)
	v.SetDefault("database.pool.max_idle_conns", d.Database.Pool.MaxIdleConns)
	v.SetDefault("database.pool.conn_max_lifetime", d.Database.Pool.ConnMaxLifetime)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("upload.dir", d.Upload.Dir)
	v.SetDefault("upload.base_url", d.Upload.BaseURL)
	v.SetDefault("mcp.transport", d.MCP.Transport)
	v.SetDefault("mcp.port", d.MCP.Port)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// fixedKeys name session parameters that older config files may still
// carry. They are constants of the session service and refused here.
var fixedKeys = []string{"auth.token_ttl", "auth.bcrypt_cost"}

// Load decodes the settings held by v (file, environment, bound flags and
// defaults, in viper's usual precedence) and validates them.
func Load(v *viper.Viper) (*YAMLConfig, error) {
	for _, key := range fixedKeys {
		if v.IsSet(key) {
			return nil, fmt.Errorf("%s is fixed and cannot be configured", key)
		}
	}

	var cfg YAMLConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every malformed value at once.
func (c *YAMLConfig) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if _, err := c.Server.BodyLimit(); err != nil {
		errs = append(errs, fmt.Errorf("server.max_body_size: %w", err))
	}
	if _, err := parseDuration(c.Server.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout: %w", err))
	}
	switch c.App.Env {
	case "", EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("app.env %q must be %s or %s", c.App.Env, EnvDevelopment, EnvProduction))
	}
	if c.Auth.LoginRateLimit < 0 {
		errs = append(errs, errors.New("auth.login_rate_limit must not be negative"))
	}
	switch c.Database.Driver {
	case "", "sqlite":
	case "postgres", "mysql":
		if c.Database.DSN == "" {
			errs = append(errs, fmt.Errorf("database.dsn is required for %s", c.Database.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	if _, err := parseDuration(c.Database.Pool.ConnMaxLifetime); err != nil {
		errs = append(errs, fmt.Errorf("database.pool.conn_max_lifetime: %w", err))
	}
	switch c.MCP.Transport {
	case "", "stdio", "http":
	default:
		errs = append(errs, fmt.Errorf("mcp.transport %q must be stdio or http", c.MCP.Transport))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not a level", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be text or json", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// Production reports whether the deployment runs in production mode.
func (c AppConfig) Production() bool {
	return c.Env == EnvProduction
}

// BodyLimit returns the maximum request body size in bytes.
func (c ServerConfig) BodyLimit() (int64, error) {
	if c.MaxBodySize == "" {
		return 0, nil
	}
	return ParseSize(c.MaxBodySize)
}

// Shutdown returns the graceful shutdown timeout.
func (c ServerConfig) Shutdown() time.Duration {
	d, _ := parseDuration(c.ShutdownTimeout)
	return d
}

// Lifetime returns the maximum connection lifetime, zero meaning unlimited.
func (c PoolYAMLConfig) Lifetime() time.Duration {
	d, _ := parseDuration(c.ConnMaxLifetime)
	return d
}

// ResolveDataDir returns the configured data directory, defaulting to
// ~/.jambearum.
func (c *YAMLConfig) ResolveDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jambearum"
	}
	return filepath.Join(home, ".jambearum")
}

// UploadDir returns the directory for uploaded images, defaulting to the
// uploads folder inside the data directory.
func (c *YAMLConfig) UploadDir() string {
	if c.Upload.Dir != "" {
		return c.Upload.Dir
	}
	return filepath.Join(c.ResolveDataDir(), "uploads")
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

var sizeUnits = []struct {
	suffix string
	mult   int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize parses a human size such as "10MB", "512 KB" or "2048" into
// bytes. Units are binary and case-insensitive.
func ParseSize(s string) (int64, error) {
	str := strings.ToUpper(strings.TrimSpace(s))
	if str == "" {
		return 0, fmt.Errorf("empty size")
	}

	mult := int64(1)
	for _, u := range sizeUnits {
		if strings.HasSuffix(str, u.suffix) {
			mult = u.mult
			str = strings.TrimSpace(strings.TrimSuffix(str, u.suffix))
			break
		}
	}

	n, err := strconv.ParseInt(str, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return n * mult, nil
}
