package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Env != "prod" {
		t.Errorf("Expected env prod, got %q", cfg.Env)
	}
	if cfg.Database.Driver != DriverSQLite3 || cfg.Database.DSN != "reminders.db" {
		t.Errorf("Unexpected database config %+v", cfg.Database)
	}
	if cfg.HTTP.ShutdownTimeout.Std() != 5*time.Second {
		t.Errorf("Expected 5s shutdown timeout, got %v", cfg.HTTP.ShutdownTimeout.Std())
	}
	opts := cfg.PlannerOptions()
	if opts.DistantRecurringDays != 3 || !opts.UrgentNeedsAttention || opts.TopItems != 5 {
		t.Errorf("Unexpected planner options %+v", opts)
	}
	if cfg.Notify.DailyAt != "08:00" || cfg.ReportInterval() != 0 {
		t.Errorf("Unexpected notify config %+v", cfg.Notify)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reminders.toml")
	data := `
env = "dev"
timezone = "UTC"

[database]
driver = "modernc"
dsn = "/tmp/reminders-test.db"

[http]
port = "9090"
shutdown_timeout = "12s"

[planner]
distant_recurring_days = 7
ignore_urgent = true

[annotation]
endpoint = "http://localhost:9999/annotate"
timeout = "2s"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("REPORT_INTERVAL_HOURS", "6")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Env != "dev" || cfg.Database.Driver != DriverModernc {
		t.Errorf("Expected file values, got env=%q driver=%q", cfg.Env, cfg.Database.Driver)
	}
	if cfg.HTTP.Port != "7070" {
		t.Errorf("Expected env to override port, got %q", cfg.HTTP.Port)
	}
	if cfg.HTTP.ShutdownTimeout.Std() != 12*time.Second || cfg.Annotation.Timeout.Std() != 2*time.Second {
		t.Errorf("Unexpected durations %v %v", cfg.HTTP.ShutdownTimeout.Std(), cfg.Annotation.Timeout.Std())
	}
	if cfg.ReportInterval() != 6*time.Hour {
		t.Errorf("Expected 6h interval, got %v", cfg.ReportInterval())
	}
	opts := cfg.PlannerOptions()
	if opts.DistantRecurringDays != 7 || opts.UrgentNeedsAttention {
		t.Errorf("Unexpected planner options %+v", opts)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Expected UTC location, got %v (%v)", loc, err)
	}
}

func TestValidate(t *testing.T) {
	base := Config{Env: "prod", Database: DatabaseConfig{Driver: DriverSQLite3}}
	if err := base.Validate(); err != nil {
		t.Fatalf("Expected valid config: %v", err)
	}

	bad := base
	bad.Env = "staging"
	if bad.Validate() == nil {
		t.Errorf("Expected unknown env error")
	}
	bad = base
	bad.Database.Driver = "postgres"
	if bad.Validate() == nil {
		t.Errorf("Expected unknown driver error")
	}
	bad = base
	bad.Timezone = "Mars/Olympus_Mons"
	if bad.Validate() == nil {
		t.Errorf("Expected timezone error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("Expected error for missing config file")
	}
}
