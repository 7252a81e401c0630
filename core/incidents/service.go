package incidents

import (
	"context"
	"errors"
	"strings"

	"stpaul-crime/core/store"
	"stpaul-crime/core/utils"
)

const maxCaseNumberLen = 64

type Service struct {
	store  store.IncidentsStore
	logger *utils.Logger
}

func NewService(st store.IncidentsStore, logger *utils.Logger) *Service {
	return &Service{store: st, logger: logger}
}

func (s *Service) List(ctx context.Context, filter store.IncidentFilter) ([]store.Incident, error) {
	return s.store.ListIncidents(ctx, filter)
}

// Validate turns a request body into a storable incident.
func Validate(req NewIncidentRequest) (*store.Incident, error) {
	caseNumber := strings.TrimSpace(string(req.CaseNumber))
	if caseNumber == "" {
		return nil, invalid("case_number", "is required")
	}
	if len(caseNumber) > maxCaseNumberLen {
		return nil, invalid("case_number", "exceeds %d characters", maxCaseNumberLen)
	}
	date, tm, err := NormalizeDateTime(req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	ints := []struct {
		name string
		val  FlexInt
	}{
		{"code", req.Code},
		{"police_grid", req.PoliceGrid},
		{"neighborhood_number", req.NeighborhoodNumber},
	}
	for _, f := range ints {
		if !f.val.valid() {
			return nil, invalid(f.name, "must be an integer")
		}
		if !f.val.Set {
			return nil, invalid(f.name, "is required")
		}
	}
	return &store.Incident{
		CaseNumber:         caseNumber,
		Date:               date,
		Time:               tm,
		Code:               req.Code.Value,
		Incident:           strings.TrimSpace(req.Incident),
		PoliceGrid:         req.PoliceGrid.Value,
		NeighborhoodNumber: req.NeighborhoodNumber.Value,
		Block:              strings.TrimSpace(string(req.Block)),
	}, nil
}

func (s *Service) Create(ctx context.Context, req NewIncidentRequest) (*store.Incident, error) {
	inc, err := Validate(req)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateIncident(ctx, inc); err != nil {
		if s.logger != nil && !isDomainError(err) {
			s.logger.Errorf("create incident %s: %v", inc.CaseNumber, err)
		}
		return nil, err
	}
	if s.logger != nil {
		s.logger.Printf("incident %s created (code=%d neighborhood=%d)", inc.CaseNumber, inc.Code, inc.NeighborhoodNumber)
	}
	return inc, nil
}

func (s *Service) Remove(ctx context.Context, caseNumber string) error {
	caseNumber = strings.TrimSpace(caseNumber)
	if caseNumber == "" {
		return invalid("case_number", "is required")
	}
	if err := s.store.DeleteIncident(ctx, caseNumber); err != nil {
		if s.logger != nil && !isDomainError(err) {
			s.logger.Errorf("delete incident %s: %v", caseNumber, err)
		}
		return err
	}
	if s.logger != nil {
		s.logger.Printf("incident %s removed", caseNumber)
	}
	return nil
}

func isDomainError(err error) bool {
	return errors.Is(err, store.ErrDuplicate) || errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidReference)
}
