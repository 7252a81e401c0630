package maintenance

import (
	"context"
	"testing"
	"time"

	"stpaul-crime/config"
	"stpaul-crime/core/store"
	"stpaul-crime/core/store/storetest"
	"stpaul-crime/core/utils"
)

func TestNewSchedulerRejectsBadSchedule(t *testing.T) {
	_, err := NewScheduler(config.MaintenanceConfig{Enabled: true, Schedule: "every tuesday"}, nil, store.DialectSQLite, nil, nil)
	if err == nil {
		t.Fatalf("expected schedule error")
	}
	if _, err := NewScheduler(config.MaintenanceConfig{Enabled: false, Schedule: "every tuesday"}, nil, store.DialectSQLite, nil, nil); err != nil {
		t.Fatalf("disabled scheduler should not validate schedule: %v", err)
	}
}

func TestRunOnceOptimizesAndAudits(t *testing.T) {
	db := storetest.NewDB(t)
	audits := store.NewAuditStore(db, store.DialectSQLite)
	s, err := NewScheduler(config.MaintenanceConfig{Enabled: true, Schedule: "@daily"}, db, store.DialectSQLite, audits, utils.Discard())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if !s.LastRun().IsZero() {
		t.Fatalf("expected no run yet")
	}
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if s.LastRun().IsZero() {
		t.Fatalf("expected last run to be recorded")
	}
	entries, err := audits.List(context.Background(), store.AuditFilter{Limit: 1})
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "maintenance.run" {
		t.Fatalf("expected maintenance audit entry, got %+v", entries)
	}
}

func TestStartStop(t *testing.T) {
	db := storetest.NewDB(t)
	s, err := NewScheduler(config.MaintenanceConfig{Enabled: true, Schedule: "@every 1h"}, db, store.DialectSQLite, nil, utils.Discard())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.StartWithContext(context.Background())
	s.StartWithContext(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.StopWithContext(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := s.StopWithContext(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestDisabledSchedulerIsNoop(t *testing.T) {
	s, err := NewScheduler(config.MaintenanceConfig{}, nil, store.DialectSQLite, nil, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.StartWithContext(context.Background())
	if err := s.StopWithContext(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
