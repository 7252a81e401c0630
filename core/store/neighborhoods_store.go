package store

import (
	"context"
	"database/sql"
)

type Neighborhood struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type NeighborhoodsStore interface {
	ListNeighborhoods(ctx context.Context, ids []int64) ([]Neighborhood, error)
}

type neighborhoodsStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewNeighborhoodsStore(db *sql.DB, dialect Dialect) NeighborhoodsStore {
	return &neighborhoodsStore{db: db, dialect: dialect}
}

func (s *neighborhoodsStore) ListNeighborhoods(ctx context.Context, ids []int64) ([]Neighborhood, error) {
	query := `SELECT neighborhood_number, neighborhood_name FROM Neighborhoods`
	var args []any
	if len(ids) > 0 {
		var clause string
		clause, args = inClause("neighborhood_number", ids, args)
		query += " WHERE " + clause
	}
	query += " ORDER BY neighborhood_number ASC"
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Neighborhood{}
	for rows.Next() {
		var n Neighborhood
		if err := rows.Scan(&n.ID, &n.Name); err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, rows.Err()
}
