package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Incident is one row of the Incidents table with date_time split into its
// date and time parts.
type Incident struct {
	CaseNumber         string `json:"case_number"`
	Date               string `json:"date"`
	Time               string `json:"time"`
	Code               int64  `json:"code"`
	Incident           string `json:"incident"`
	PoliceGrid         int64  `json:"police_grid"`
	NeighborhoodNumber int64  `json:"neighborhood_number"`
	Block              string `json:"block"`
}

// IncidentFilter predicates are ANDed together. Empty slices and empty date
// strings add no predicate.
type IncidentFilter struct {
	Neighborhoods []int64
	Codes         []int64
	Grids         []int64
	StartDate     string // exclusive lower bound on date_time
	EndDate       string // exclusive upper bound on date_time
	Limit         int    // required, resolved by config.IncidentsConfig.EffectiveLimit
}

type IncidentsStore interface {
	ListIncidents(ctx context.Context, filter IncidentFilter) ([]Incident, error)
	// CreateIncident inserts the incident unless the case number exists.
	// Returns ErrDuplicate or ErrInvalidReference.
	CreateIncident(ctx context.Context, incident *Incident) error
	// DeleteIncident removes the incident. Returns ErrNotFound when absent.
	DeleteIncident(ctx context.Context, caseNumber string) error
}

type incidentsStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewIncidentsStore(db *sql.DB, dialect Dialect) IncidentsStore {
	return &incidentsStore{db: db, dialect: dialect}
}

const incidentColumns = `case_number, date_time, code, incident, police_grid, neighborhood_number, block`

func (s *incidentsStore) ListIncidents(ctx context.Context, filter IncidentFilter) ([]Incident, error) {
	if filter.Limit <= 0 {
		return nil, fmt.Errorf("list incidents: limit must be positive, got %d", filter.Limit)
	}
	var clauses []string
	var args []any
	if len(filter.Neighborhoods) > 0 {
		var clause string
		clause, args = inClause("neighborhood_number", filter.Neighborhoods, args)
		clauses = append(clauses, clause)
	}
	if len(filter.Codes) > 0 {
		var clause string
		clause, args = inClause("code", filter.Codes, args)
		clauses = append(clauses, clause)
	}
	if len(filter.Grids) > 0 {
		var clause string
		clause, args = inClause("police_grid", filter.Grids, args)
		clauses = append(clauses, clause)
	}
	if filter.StartDate != "" {
		clauses = append(clauses, "date_time > ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		clauses = append(clauses, "date_time < ?")
		args = append(args, filter.EndDate)
	}
	query := `SELECT ` + incidentColumns + ` FROM Incidents`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date_time DESC, case_number DESC LIMIT ?"
	args = append(args, filter.Limit)

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Incident{}
	for rows.Next() {
		inc, err := scanIncidentRow(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, inc)
	}
	return res, rows.Err()
}

func (s *incidentsStore) CreateIncident(ctx context.Context, incident *Incident) error {
	if incident == nil {
		return fmt.Errorf("nil incident")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, s.dialect.Rebind(`
		INSERT INTO Incidents(`+incidentColumns+`)
		VALUES(?,?,?,?,?,?,?)
		ON CONFLICT(case_number) DO NOTHING`),
		incident.CaseNumber, JoinDateTime(incident.Date, incident.Time), incident.Code, incident.Incident,
		incident.PoliceGrid, incident.NeighborhoodNumber, incident.Block)
	if err != nil {
		tx.Rollback()
		switch {
		case isForeignKeyViolation(err):
			return ErrInvalidReference
		case isUniqueViolation(err):
			return ErrDuplicate
		}
		return fmt.Errorf("insert incident %s: %w", incident.CaseNumber, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		tx.Rollback()
		return ErrDuplicate
	}
	details := fmt.Sprintf("case_number=%s code=%d neighborhood=%d", incident.CaseNumber, incident.Code, incident.NeighborhoodNumber)
	if err := logAuditTx(ctx, tx, s.dialect, "incident.create", details); err != nil {
		tx.Rollback()
		return fmt.Errorf("audit incident %s: %w", incident.CaseNumber, err)
	}
	if err := tx.Commit(); err != nil {
		if isForeignKeyViolation(err) {
			return ErrInvalidReference
		}
		return err
	}
	return nil
}

func (s *incidentsStore) DeleteIncident(ctx context.Context, caseNumber string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM Incidents WHERE case_number=?`), caseNumber)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("delete incident %s: %w", caseNumber, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		tx.Rollback()
		return ErrNotFound
	}
	if err := logAuditTx(ctx, tx, s.dialect, "incident.delete", "case_number="+caseNumber); err != nil {
		tx.Rollback()
		return fmt.Errorf("audit incident %s: %w", caseNumber, err)
	}
	return tx.Commit()
}

func scanIncidentRow(rows *sql.Rows) (Incident, error) {
	var inc Incident
	var dateTime string
	if err := rows.Scan(&inc.CaseNumber, &dateTime, &inc.Code, &inc.Incident, &inc.PoliceGrid, &inc.NeighborhoodNumber, &inc.Block); err != nil {
		return inc, err
	}
	inc.Date, inc.Time = SplitDateTime(dateTime)
	return inc, nil
}

// SplitDateTime splits a stored "YYYY-MM-DDTHH:MM:SS" value. A space
// separator is accepted as well.
func SplitDateTime(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if date, tm, ok := strings.Cut(raw, "T"); ok {
		return date, tm
	}
	if date, tm, ok := strings.Cut(raw, " "); ok {
		return date, strings.TrimSpace(tm)
	}
	return raw, ""
}

func JoinDateTime(date, tm string) string {
	date = strings.TrimSpace(date)
	tm = strings.TrimSpace(tm)
	if tm == "" {
		return date
	}
	return date + "T" + tm
}
