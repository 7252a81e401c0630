// Package storetest opens migrated test databases (SQLite, or Postgres when
// configured) and seeds them.
package storetest

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stpaul-crime/config"
	"stpaul-crime/core/store"
	"stpaul-crime/core/utils"
)

// NewDB opens a migrated SQLite database in t.TempDir and closes it when the
// test ends.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()
	cfg := &config.AppConfig{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "crime.sqlite3"),
	}
	logger := utils.Discard()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, store.DialectSQLite, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// PostgresURLEnv names the DSN of a disposable Postgres database. Tests that
// need Postgres are skipped when it is unset.
const PostgresURLEnv = "CRIME_TEST_POSTGRES_URL"

// NewPostgresDB opens and migrates the database named by PostgresURLEnv and
// empties the crime tables.
func NewPostgresDB(t testing.TB) *sql.DB {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv(PostgresURLEnv))
	if dsn == "" {
		t.Skipf("%s not set", PostgresURLEnv)
	}
	cfg := &config.AppConfig{DBDriver: config.DriverPostgres, DBURL: dsn, DBMaxOpenConns: 4}
	logger := utils.Discard()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, store.DialectPostgres, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.Exec(`TRUNCATE Incidents, Codes, Neighborhoods, audit_log RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

var Codes = []store.Code{
	{Code: 110, Type: "Murder, Non Negligent Manslaughter"},
	{Code: 300, Type: "Robbery"},
	{Code: 600, Type: "Theft"},
	{Code: 1800, Type: "Narcotics"},
	{Code: 9954, Type: "Proactive Police Visit"},
}

var Neighborhoods = []store.Neighborhood{
	{ID: 1, Name: "Conway/Battlecreek/Highwood"},
	{ID: 5, Name: "Payne/Phalen"},
	{ID: 11, Name: "Hamline/Midway"},
	{ID: 17, Name: "Downtown"},
}

var Incidents = []store.Incident{
	{CaseNumber: "22000101", Date: "2022-05-01", Time: "08:15:00", Code: 600, Incident: "Theft", PoliceGrid: 87, NeighborhoodNumber: 11, Block: "15XX UNIVERSITY AV"},
	{CaseNumber: "22000102", Date: "2022-05-02", Time: "23:57:00", Code: 300, Incident: "Robbery", PoliceGrid: 87, NeighborhoodNumber: 11, Block: "16XX SNELLING AV"},
	{CaseNumber: "22000103", Date: "2022-05-03", Time: "12:00:00", Code: 9954, Incident: "Proactive Police Visit", PoliceGrid: 92, NeighborhoodNumber: 17, Block: "4XX WABASHA ST"},
	{CaseNumber: "22000104", Date: "2022-05-04", Time: "01:30:00", Code: 600, Incident: "Theft", PoliceGrid: 10, NeighborhoodNumber: 1, Block: "21XX SUBURBAN AV"},
	{CaseNumber: "22000105", Date: "2022-05-05", Time: "17:45:00", Code: 1800, Incident: "Narcotics", PoliceGrid: 88, NeighborhoodNumber: 11, Block: "17XX MINNEHAHA AV"},
	{CaseNumber: "22000106", Date: "2022-05-06", Time: "09:05:00", Code: 600, Incident: "Theft", PoliceGrid: 55, NeighborhoodNumber: 5, Block: "10XX PAYNE AV"},
}

// Seed loads the reference rows and the sample incidents into SQLite.
func Seed(t testing.TB, db *sql.DB) {
	t.Helper()
	SeedWith(t, db, store.DialectSQLite)
}

func SeedReference(t testing.TB, db *sql.DB) {
	t.Helper()
	SeedReferenceWith(t, db, store.DialectSQLite)
}

func SeedWith(t testing.TB, db *sql.DB, dialect store.Dialect) {
	t.Helper()
	SeedReferenceWith(t, db, dialect)
	for _, inc := range Incidents {
		if _, err := db.Exec(dialect.Rebind(`INSERT INTO Incidents(case_number, date_time, code, incident, police_grid, neighborhood_number, block) VALUES(?,?,?,?,?,?,?)`),
			inc.CaseNumber, store.JoinDateTime(inc.Date, inc.Time), inc.Code, inc.Incident, inc.PoliceGrid, inc.NeighborhoodNumber, inc.Block); err != nil {
			t.Fatalf("seed incident %s: %v", inc.CaseNumber, err)
		}
	}
}

func SeedReferenceWith(t testing.TB, db *sql.DB, dialect store.Dialect) {
	t.Helper()
	for _, c := range Codes {
		if _, err := db.Exec(dialect.Rebind(`INSERT INTO Codes(code, incident_type) VALUES(?, ?)`), c.Code, c.Type); err != nil {
			t.Fatalf("seed code %d: %v", c.Code, err)
		}
	}
	for _, n := range Neighborhoods {
		if _, err := db.Exec(dialect.Rebind(`INSERT INTO Neighborhoods(neighborhood_number, neighborhood_name) VALUES(?, ?)`), n.ID, n.Name); err != nil {
			t.Fatalf("seed neighborhood %d: %v", n.ID, err)
		}
	}
}

// GetIncident reads one incident back by case number, or nil when absent.
func GetIncident(t testing.TB, db *sql.DB, caseNumber string) *store.Incident {
	t.Helper()
	var inc store.Incident
	var dateTime string
	err := db.QueryRow(`SELECT case_number, date_time, code, incident, police_grid, neighborhood_number, block FROM Incidents WHERE case_number=?`, caseNumber).
		Scan(&inc.CaseNumber, &dateTime, &inc.Code, &inc.Incident, &inc.PoliceGrid, &inc.NeighborhoodNumber, &inc.Block)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		t.Fatalf("get incident %s: %v", caseNumber, err)
	}
	inc.Date, inc.Time = store.SplitDateTime(dateTime)
	return &inc
}

// FillAudit inserts n audit entries with the given action in one
// transaction.
func FillAudit(t testing.TB, db *sql.DB, action string, n int) {
	t.Helper()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	now := utils.NowUTC()
	for i := 0; i < n; i++ {
		if _, err := tx.Exec(`INSERT INTO audit_log(action, details, created_at) VALUES(?, ?, ?)`, action, "filler", now); err != nil {
			_ = tx.Rollback()
			t.Fatalf("fill audit: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}
