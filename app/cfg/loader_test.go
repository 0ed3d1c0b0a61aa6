package cfg

import (
	"os"
	"strings"
	"testing"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	unsetEnv(t, "PORT", "DB_PATH", "SOURCES_DIR", "WORKER_COUNT", "MAX_DOCUMENT_SIZE", "LOOKAHEAD")

	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got: %s", cfg.Port)
	}
	if cfg.DBPath != "./rsxml.db" {
		t.Errorf("Expected DB path './rsxml.db', got: %s", cfg.DBPath)
	}
	if cfg.SourcesDir != "./sources" {
		t.Errorf("Expected sources dir './sources', got: %s", cfg.SourcesDir)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got: %d", cfg.WorkerCount)
	}
	if cfg.MaxDocumentSize != 10<<20 {
		t.Errorf("Expected max document size 10MiB, got: %d", cfg.MaxDocumentSize)
	}
	if cfg.Lookahead != 64 {
		t.Errorf("Expected lookahead 64, got: %d", cfg.Lookahead)
	}
	if Get() != cfg {
		t.Error("Expected Get to return the loaded configuration")
	}
}

func TestLoadArgsOverrides(t *testing.T) {
	unsetEnv(t, "PORT", "LOOKAHEAD")
	t.Setenv("WORKER_COUNT", "2")

	cfg, err := LoadArgs([]string{"--port", "9090", "--lookahead", "16", "--debug"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got: %s", cfg.Port)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("Expected worker count from environment, got: %d", cfg.WorkerCount)
	}
	if cfg.Lookahead != 16 {
		t.Errorf("Expected lookahead 16, got: %d", cfg.Lookahead)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestLoadArgsRejectsNonPositiveLimits(t *testing.T) {
	unsetEnv(t, "WORKER_COUNT", "SCHEDULER_INTERVAL", "LOOKAHEAD")

	_, err := LoadArgs([]string{"--max-document-size", "0"})
	if err == nil {
		t.Fatal("Expected error for zero max document size")
	}
	if !strings.Contains(err.Error(), "max document size") {
		t.Errorf("Expected error to name the field, got: %v", err)
	}
}
