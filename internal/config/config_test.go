package config

import (
	"os"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SECRET_ID", "court-reserve/settings")
	t.Setenv("LOCAL_TIMEZONE", "America/Los_Angeles")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequiredEnv(t)

	s, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if s.DaysOffset != 0 {
		t.Fatalf("default DaysOffset = %d, want 0", s.DaysOffset)
	}
	if s.DryRun {
		t.Fatal("default DryRun must be false")
	}
	if s.Timezone == nil || s.Timezone.String() != "America/Los_Angeles" {
		t.Fatalf("timezone not loaded: %v", s.Timezone)
	}
}

func TestFromEnv_MissingSecretID(t *testing.T) {
	t.Setenv("SECRET_ID", "")
	t.Setenv("LOCAL_TIMEZONE", "America/Los_Angeles")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for missing SECRET_ID")
	}
}

func TestFromEnv_MissingTimezone(t *testing.T) {
	t.Setenv("SECRET_ID", "court-reserve/settings")
	t.Setenv("LOCAL_TIMEZONE", "")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for missing LOCAL_TIMEZONE")
	}
}

func TestFromEnv_InvalidTimezone(t *testing.T) {
	t.Setenv("SECRET_ID", "court-reserve/settings")
	t.Setenv("LOCAL_TIMEZONE", "Mars/Olympus_Mons")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestFromEnv_DaysOffset(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DAYS_OFFSET", "-2")

	s, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if s.DaysOffset != -2 {
		t.Fatalf("DaysOffset = %d, want -2", s.DaysOffset)
	}
}

func TestFromEnv_InvalidDaysOffset(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DAYS_OFFSET", "tomorrow")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for non-integer DAYS_OFFSET")
	}
}

func TestFromEnv_DryRun(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DRY_RUN", "true")

	s, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if !s.DryRun {
		t.Fatal("DryRun = false, want true")
	}
}

func TestFromEnv_InvalidDryRun(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DRY_RUN", "yes please")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for malformed DRY_RUN")
	}
}

func TestTargetDate_OffsetAndTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	s := &Settings{DaysOffset: 3, Timezone: loc}

	// 02:00 UTC on May 7 is still May 6 in Los Angeles.
	now := time.Date(2021, time.May, 7, 2, 0, 0, 0, time.UTC)
	got := s.TargetDate(now)

	if got.Location() != loc {
		t.Fatalf("target date location = %v, want %v", got.Location(), loc)
	}
	if got.Day() != 9 || got.Month() != time.May {
		t.Fatalf("target date = %v, want May 9 local", got)
	}
}

func TestLoadScheduler(t *testing.T) {
	path := t.TempDir() + "/scheduler.yaml"
	writeFile(t, path, "scheduler:\n  cron: \"0 16 * * *\"\n")

	cfg, err := LoadScheduler(path)
	if err != nil {
		t.Fatalf("LoadScheduler: %v", err)
	}
	if cfg.Scheduler.Cron != "0 16 * * *" {
		t.Fatalf("cron = %q", cfg.Scheduler.Cron)
	}
}

func TestLoadScheduler_MissingCron(t *testing.T) {
	path := t.TempDir() + "/scheduler.yaml"
	writeFile(t, path, "scheduler: {}\n")

	if _, err := LoadScheduler(path); err == nil {
		t.Fatal("expected error for missing cron expression")
	}
}
