package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config selects and tunes the backing database.
type Config struct {
	Driver          string        // sqlite (default), postgres or mysql
	DSN             string        // required for postgres and mysql
	DataDir         string        // sqlite file location; empty means in-memory
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store persists admins, UMKM, homepage images, settings and users.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the configured database and applies migrations.
func Open(cfg Config) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	var (
		sqlDriver string
		dsn       string
	)
	switch driver {
	case DriverSQLite:
		sqlDriver = "sqlite"
		dsn = cfg.DSN
		if dsn == "" {
			if cfg.DataDir == "" {
				dsn = ":memory:"
			} else {
				if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
					return nil, fmt.Errorf("create data dir: %w", err)
				}
				dsn = "file:" + filepath.Join(cfg.DataDir, "jambearum.db") +
					"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
			}
		}
	case DriverPostgres:
		sqlDriver = "pgx"
		dsn = SanitizeDSN(driver, cfg.DSN)
	case DriverMySQL:
		sqlDriver = "mysql"
		dsn = SanitizeDSN(driver, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if driver != DriverSQLite && cfg.DSN == "" {
		return nil, fmt.Errorf("%s driver requires a dsn", driver)
	}

	db, err := sqlx.Connect(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Driver returns the name of the active database driver.
func (s *Store) Driver() string {
	return s.driver
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to the bind style of the active driver.
func (s *Store) rebind(q string) string {
	return s.db.Rebind(q)
}

// exactlyOne maps an UPDATE or DELETE that touched no rows to ErrNotFound.
func exactlyOne(res interface{ RowsAffected() (int64, error) }, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
