package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"stpaul-crime/core/utils"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

type MigrationState struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt *time.Time
}

// ApplyMigrations brings the schema up to date. The crime tables use
// IF NOT EXISTS so an existing database file is adopted as-is.
func ApplyMigrations(ctx context.Context, db *sql.DB, dialect Dialect, logger *utils.Logger) error {
	provider, err := newMigrationProvider(db, dialect)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("%s migrations failed: %w", dialect, err)
	}
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		if logger != nil {
			logger.Printf("migration %d applied (%s) in %s", res.Source.Version, res.Source.Path, res.Duration)
		}
		logMigrationAudit(ctx, db, dialect, "migration.applied", fmt.Sprintf("version=%d path=%s", res.Source.Version, res.Source.Path))
	}
	if logger != nil && len(results) == 0 {
		logger.Printf("%s schema up to date", dialect)
	}
	return nil
}

func MigrationStatus(ctx context.Context, db *sql.DB, dialect Dialect) ([]MigrationState, error) {
	provider, err := newMigrationProvider(db, dialect)
	if err != nil {
		return nil, err
	}
	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}
	out := make([]MigrationState, 0, len(statuses))
	for _, st := range statuses {
		if st == nil || st.Source == nil {
			continue
		}
		item := MigrationState{
			Version: st.Source.Version,
			Path:    st.Source.Path,
			Applied: st.State == goose.StateApplied,
		}
		if item.Applied && !st.AppliedAt.IsZero() {
			at := st.AppliedAt.UTC()
			item.AppliedAt = &at
		}
		out = append(out, item)
	}
	return out, nil
}

func newMigrationProvider(db *sql.DB, dialect Dialect) (*goose.Provider, error) {
	dir := "migrations/sqlite"
	gooseDialect := goose.DialectSQLite3
	if dialect == DialectPostgres {
		dir = "migrations/postgres"
		gooseDialect = goose.DialectPostgres
	}
	fsys, err := fs.Sub(migrationFiles, dir)
	if err != nil {
		return nil, fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("migration provider: %w", err)
	}
	return provider, nil
}

func logMigrationAudit(ctx context.Context, db *sql.DB, dialect Dialect, action, details string) {
	_, _ = db.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO audit_log(action, details, created_at)
		VALUES(?, ?, ?)
	`), action, details, utils.NowUTC())
}
