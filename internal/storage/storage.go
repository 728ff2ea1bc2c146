package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/novagadgets/novadesk/internal/config"
	"github.com/novagadgets/novadesk/internal/resilience"
)

// Supported DB_DRIVER values
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Open connects to the configured database, waits until it answers and applies
// pending migrations
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	driver, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	configurePool(db, driver)

	reconnect := &resilience.ReconnectConfig{
		MaxAttempts: cfg.DBConnectAttempts,
		Backoff:     time.Duration(cfg.DBConnectBackoff) * time.Millisecond,
		Multiplier:  2.0,
		MaxBackoff:  30 * time.Second,
	}
	logger = logger.With().Str("component", "storage").Str("driver", driver).Logger()
	if err := resilience.Reconnect(ctx, logger, db.PingContext, reconnect); err != nil {
		db.Close()
		return nil, fmt.Errorf("database not reachable: %w", err)
	}

	if err := Migrate(ctx, db, driver); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Msg("Database ready")
	return db, nil
}

// OpenSQLite opens a SQLite database file and applies migrations. Used for local
// runs and tests.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	cfg := &config.Config{DBDriver: DriverSQLite, DBPath: path, DBConnectAttempts: 1}
	return Open(ctx, cfg, zerolog.Nop())
}

func dataSource(cfg *config.Config) (driver, dsn string, err error) {
	switch cfg.DBDriver {
	case DriverMySQL:
		return DriverMySQL, mysqlDSN(cfg), nil

	case DriverSQLite:
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", "", fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return DriverSQLite, sqliteDSN(cfg.DBPath), nil
	}
	return "", "", fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
}

func mysqlDSN(cfg *config.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort))
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func sqliteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"
}

func configurePool(db *sql.DB, driver string) {
	if driver == DriverSQLite {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
		return
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
}

// PingCheck reports whether the database answers, for readiness probes
func PingCheck(db *sql.DB) func(ctx context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		if db == nil {
			return false, fmt.Errorf("database not configured")
		}
		if err := db.PingContext(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
}
