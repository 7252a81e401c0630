package maintenance

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"stpaul-crime/config"
	"stpaul-crime/core/store"
	"stpaul-crime/core/utils"

	"github.com/robfig/cron/v3"
)

// Scheduler periodically refreshes planner statistics on the crime tables.
type Scheduler struct {
	cfg     config.MaintenanceConfig
	db      *sql.DB
	dialect store.Dialect
	audits  store.AuditStore
	logger  *utils.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
	lastRun time.Time
}

func NewScheduler(cfg config.MaintenanceConfig, db *sql.DB, dialect store.Dialect, audits store.AuditStore, logger *utils.Logger) (*Scheduler, error) {
	if cfg.Enabled {
		if _, err := cron.ParseStandard(strings.TrimSpace(cfg.Schedule)); err != nil {
			return nil, fmt.Errorf("maintenance schedule %q: %w", cfg.Schedule, err)
		}
	}
	return &Scheduler{cfg: cfg, db: db, dialect: dialect, audits: audits, logger: logger}, nil
}

func (s *Scheduler) StartWithContext(ctx context.Context) {
	if s == nil || s.db == nil || !s.cfg.Enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(strings.TrimSpace(s.cfg.Schedule), func() {
		if err := s.RunOnce(runCtx); err != nil && s.logger != nil {
			s.logger.Errorf("maintenance run failed: %v", err)
		}
	}); err != nil {
		cancel()
		if s.logger != nil {
			s.logger.Errorf("maintenance schedule rejected: %v", err)
		}
		return
	}
	c.Start()
	s.cron = c
	s.cancel = cancel
	s.running = true
	if s.logger != nil {
		s.logger.Printf("maintenance scheduled (%s)", s.cfg.Schedule)
	}
}

func (s *Scheduler) StopWithContext(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	c := s.cron
	cancel := s.cancel
	wasRunning := s.running
	s.cron = nil
	s.cancel = nil
	s.running = false
	s.mu.Unlock()
	if !wasRunning || c == nil {
		return nil
	}
	cancel()
	stopped := c.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce executes the dialect's optimize statement and records it in the
// audit log.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	start := time.Now()
	stmt := s.dialect.OptimizeStatement()
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("%s: %w", stmt, err)
	}
	dur := time.Since(start)
	s.mu.Lock()
	s.lastRun = utils.NowUTC()
	s.mu.Unlock()
	if s.audits != nil {
		if err := s.audits.Log(ctx, "maintenance.run", fmt.Sprintf("statement=%q duration=%s", stmt, dur)); err != nil && s.logger != nil {
			s.logger.Errorf("maintenance audit: %v", err)
		}
	}
	if s.logger != nil {
		s.logger.Printf("maintenance %q completed in %s", stmt, dur)
	}
	return nil
}

func (s *Scheduler) LastRun() time.Time {
	if s == nil {
		return time.Time{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}
