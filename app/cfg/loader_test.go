package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:                "./data/test.db",
		FeedsDir:              "./feeds",
		Port:                  "8080",
		APIAccessKey:          "test-key",
		WorkerCount:           3,
		FetchConcurrency:      4,
		IngestionSchedule:     "0 * * * *",
		DeliverySchedule:      "*/30 * * * *",
		RetentionSchedule:     "0 2 * * *",
		LookbackHours:         24,
		DigestPageSize:        5,
		RetryFailedDeliveries: true,
		UserAgent:             "Test Agent",
		Timezone:              "UTC",
		Debug:                 true,
		Version:               "test-version",
	}

	if cfg.DBPath != "./data/test.db" {
		t.Errorf("Expected DB path './data/test.db', got '%s'", cfg.DBPath)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.WorkerCount != 3 {
		t.Errorf("Expected worker count 3, got %d", cfg.WorkerCount)
	}
	if cfg.FetchConcurrency != 4 {
		t.Errorf("Expected fetch concurrency 4, got %d", cfg.FetchConcurrency)
	}
	if cfg.IngestionSchedule != "0 * * * *" {
		t.Errorf("Expected hourly ingestion schedule, got '%s'", cfg.IngestionSchedule)
	}
	if cfg.DeliverySchedule != "*/30 * * * *" {
		t.Errorf("Expected half-hourly delivery schedule, got '%s'", cfg.DeliverySchedule)
	}
	if cfg.LookbackHours != 24 {
		t.Errorf("Expected lookback of 24 hours, got %d", cfg.LookbackHours)
	}
	if cfg.DigestPageSize != 5 {
		t.Errorf("Expected digest page size 5, got %d", cfg.DigestPageSize)
	}
	if !cfg.RetryFailedDeliveries {
		t.Error("Expected retry flag to be set")
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}
