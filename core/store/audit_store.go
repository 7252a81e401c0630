package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"stpaul-crime/core/utils"
)

type AuditEntry struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditFilter narrows List. Action is a case-insensitive prefix; a zero
// Since adds no bound.
type AuditFilter struct {
	Action string
	Since  time.Time
	Limit  int
}

type AuditStore interface {
	Log(ctx context.Context, action, details string) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
}

type auditStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewAuditStore(db *sql.DB, dialect Dialect) AuditStore {
	return &auditStore{db: db, dialect: dialect}
}

func (s *auditStore) Log(ctx context.Context, action, details string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(`
		INSERT INTO audit_log(action, details, created_at) VALUES(?, ?, ?)`),
		action, details, utils.NowUTC())
	return err
}

// List returns the newest matching entries first.
func (s *auditStore) List(ctx context.Context, filter AuditFilter) ([]AuditEntry, error) {
	if filter.Limit <= 0 {
		return nil, fmt.Errorf("audit list: limit must be positive, got %d", filter.Limit)
	}
	var clauses []string
	var args []any
	if action := strings.ToLower(strings.TrimSpace(filter.Action)); action != "" {
		clauses = append(clauses, `lower(action) LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(action)+"%")
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC())
	}
	query := `SELECT id, action, details, created_at FROM audit_log`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, filter.Limit)

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(v string) string {
	return likeEscaper.Replace(v)
}

func logAuditTx(ctx context.Context, tx *sql.Tx, dialect Dialect, action, details string) error {
	_, err := tx.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO audit_log(action, details, created_at) VALUES(?, ?, ?)`),
		action, details, utils.NowUTC())
	return err
}
