package store

import (
	"context"
	"database/sql"
)

type Code struct {
	Code int64  `json:"code"`
	Type string `json:"type"`
}

type CodesStore interface {
	// ListCodes returns codes in ascending order, restricted to the given
	// values when any are supplied.
	ListCodes(ctx context.Context, codes []int64) ([]Code, error)
}

type codesStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewCodesStore(db *sql.DB, dialect Dialect) CodesStore {
	return &codesStore{db: db, dialect: dialect}
}

func (s *codesStore) ListCodes(ctx context.Context, codes []int64) ([]Code, error) {
	query := `SELECT code, incident_type FROM Codes`
	var args []any
	if len(codes) > 0 {
		var clause string
		clause, args = inClause("code", codes, args)
		query += " WHERE " + clause
	}
	query += " ORDER BY code ASC"
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Code{}
	for rows.Next() {
		var c Code
		if err := rows.Scan(&c.Code, &c.Type); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}
