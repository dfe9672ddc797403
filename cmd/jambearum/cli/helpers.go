package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/desajambearum/jambearum/internal/config"
	"github.com/desajambearum/jambearum/internal/service"
	"github.com/desajambearum/jambearum/internal/store"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// bcryptCost is lowered by tests only.
var bcryptCost = service.DefaultBcryptCost

// openStore opens the configured database, creating the data directory for
// SQLite when needed.
func openStore(cfg *config.YAMLConfig) (*store.Store, error) {
	storeCfg := store.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:    cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.Pool.Lifetime(),
	}
	if storeCfg.Driver == "" || storeCfg.Driver == store.DriverSQLite {
		storeCfg.DataDir = cfg.ResolveDataDir()
	}
	st, err := store.Open(storeCfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// newAuthService builds the session service. When auth.redis_url is set the
// Redis denylist is attached so logout revokes tokens; the returned cleanup
// closes it.
func newAuthService(ctx context.Context, cfg *config.YAMLConfig, st *store.Store, logger *slog.Logger) (*service.AuthService, func(), error) {
	if cfg.Auth.JWTSecret == "" {
		if cfg.App.Production() {
			return nil, nil, fmt.Errorf("auth.jwt_secret is required in production")
		}
		logger.Warn("auth.jwt_secret not set, using the development secret")
	}

	authSvc := service.NewAuthService(st, service.AuthConfig{
		Secret:     cfg.Auth.JWTSecret,
		Secure:     cfg.App.Production(),
		BcryptCost: bcryptCost,
	})

	cleanup := func() {}
	if cfg.Auth.RedisURL != "" {
		denylist, err := service.OpenRedisDenylist(ctx, cfg.Auth.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("init session denylist: %w", err)
		}
		authSvc.WithDenylist(denylist)
		cleanup = func() { denylist.Close() }
		logger.Info("session revocation enabled", "redis", redactURL(cfg.Auth.RedisURL))
	}
	return authSvc, cleanup, nil
}

// redactURL hides the password part of a connection URL for logging.
func redactURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return raw
	}
	if user, _, hasPass := strings.Cut(creds, ":"); hasPass {
		creds = user + ":***"
	}
	return scheme + "://" + creds + "@" + host
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}
