package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stpaul-crime/config"
	"stpaul-crime/core/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const pingTimeout = 5 * time.Second

// NewDB opens and verifies the configured database. Any failure is returned
// to the caller; the process must not start serving without a store.
func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*sql.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	var (
		db  *sql.DB
		err error
	)
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err = openPostgres(cfg)
	case config.DriverSQLite, "":
		db, err = openSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", DialectFor(cfg), err)
	}
	if logger != nil {
		logger.Printf("connected to %s database %s", DialectFor(cfg), describeTarget(cfg))
	}
	return db, nil
}

func openSQLite(cfg *config.AppConfig) (*sql.DB, error) {
	path := strings.TrimSpace(cfg.DBPath)
	if path == "" {
		return nil, fmt.Errorf("empty sqlite path")
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite", sqliteDSN(path, cfg.DBBusyTimeoutMS))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection: writes serialize in the pool instead of failing with
	// SQLITE_BUSY, and ":memory:" keeps a single database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return db, nil
}

func sqliteDSN(path string, busyTimeoutMS int) string {
	if busyTimeoutMS <= 0 {
		busyTimeoutMS = 5000
	}
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	if path != ":memory:" {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	return "file:" + path + "?" + q.Encode()
}

func openPostgres(cfg *config.AppConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	maxOpen := cfg.DBMaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen / 2)
	db.SetConnMaxIdleTime(10 * time.Minute)
	return db, nil
}

func describeTarget(cfg *config.AppConfig) string {
	if cfg.IsPostgres() {
		u, err := url.Parse(cfg.DBURL)
		if err != nil || u.Host == "" {
			return "(postgres)"
		}
		return u.Host + u.Path
	}
	return filepath.Base(cfg.DBPath)
}
