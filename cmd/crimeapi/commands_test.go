package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrateUpThenStatus(t *testing.T) {
	t.Setenv("CRIME_DB_PATH", filepath.Join(t.TempDir(), "crime.sqlite3"))
	t.Setenv("CRIME_LOG_LEVEL", "error")

	up := newRootCmd()
	up.SetArgs([]string{"migrate", "up"})
	if err := up.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	var out bytes.Buffer
	status := newRootCmd()
	status.SetOut(&out)
	status.SetArgs([]string{"migrate", "status"})
	if err := status.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("migrate status: %v", err)
	}
	text := out.String()
	if strings.Count(text, "applied") < 2 || strings.Contains(text, "pending") {
		t.Fatalf("expected all migrations applied, got:\n%s", text)
	}
}

func TestServeRejectsBadConfig(t *testing.T) {
	t.Setenv("CRIME_DB_DRIVER", "postgres")
	t.Setenv("CRIME_DB_URL", "")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"serve"})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatalf("expected config error")
	}
}
