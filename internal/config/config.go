// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the immutable per-invocation configuration snapshot. It is
// built once from the environment and passed by parameter; nothing reads the
// environment after construction.
type Settings struct {
	SecretID     string
	DaysOffset   int
	TimezoneName string
	Timezone     *time.Location
	DryRun       bool
	Environment  string

	// Optional outcome notification. Disabled when NotifyTo is empty.
	NotifyTo   string
	NotifyFrom string
	AWSRegion  string
}

// FromEnv builds Settings from the process environment. SECRET_ID and
// LOCAL_TIMEZONE are required; the timezone is never defaulted to the
// system zone.
func FromEnv() (*Settings, error) {
	s := &Settings{
		SecretID:     os.Getenv("SECRET_ID"),
		TimezoneName: os.Getenv("LOCAL_TIMEZONE"),
		Environment:  getEnv("ENVIRONMENT", "production"),
		NotifyTo:     os.Getenv("NOTIFY_EMAIL_TO"),
		NotifyFrom:   os.Getenv("NOTIFY_EMAIL_FROM"),
		AWSRegion:    os.Getenv("AWS_REGION"),
	}

	if s.SecretID == "" {
		return nil, fmt.Errorf("SECRET_ID is required")
	}
	if s.TimezoneName == "" {
		return nil, fmt.Errorf("LOCAL_TIMEZONE is required")
	}

	loc, err := time.LoadLocation(s.TimezoneName)
	if err != nil {
		return nil, fmt.Errorf("invalid LOCAL_TIMEZONE %q: %w", s.TimezoneName, err)
	}
	s.Timezone = loc

	if raw := os.Getenv("DAYS_OFFSET"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid DAYS_OFFSET %q: %w", raw, err)
		}
		s.DaysOffset = offset
	}

	if raw := os.Getenv("DRY_RUN"); raw != "" {
		dryRun, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid DRY_RUN %q: %w", raw, err)
		}
		s.DryRun = dryRun
	}

	return s, nil
}

// TargetDate resolves the booking date: now shifted into the configured
// timezone, offset by the configured number of days. The offset may be
// negative.
func (s *Settings) TargetDate(now time.Time) time.Time {
	return now.In(s.Timezone).AddDate(0, 0, s.DaysOffset)
}

// SchedulerConfig configures the long-running scheduler daemon.
type SchedulerConfig struct {
	Scheduler struct {
		// Cron is a standard five-field cron expression evaluated in the
		// daemon's local time.
		Cron string `yaml:"cron"`
	} `yaml:"scheduler"`
}

// LoadScheduler reads and validates the scheduler daemon's yaml config file.
func LoadScheduler(path string) (*SchedulerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg SchedulerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if cfg.Scheduler.Cron == "" {
		return nil, fmt.Errorf("scheduler cron expression is required")
	}
	return &cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
