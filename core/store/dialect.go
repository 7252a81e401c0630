package store

import (
	"strconv"
	"strings"

	"stpaul-crime/config"
)

// Dialect selects placeholder syntax and maintenance statements. Queries are
// written with "?" placeholders and rebound for Postgres.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

func DialectFor(cfg *config.AppConfig) Dialect {
	if cfg.IsPostgres() {
		return DialectPostgres
	}
	return DialectSQLite
}

func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// OptimizeStatement is run by the maintenance worker.
func (d Dialect) OptimizeStatement() string {
	if d == DialectPostgres {
		return "ANALYZE"
	}
	return "PRAGMA optimize"
}

func inClause(column string, values []int64, args []any) (string, []any) {
	placeholders := strings.TrimRight(strings.Repeat("?,", len(values)), ",")
	for _, v := range values {
		args = append(args, v)
	}
	return column + " IN (" + placeholders + ")", args
}
