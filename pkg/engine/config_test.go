package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigCutoffIs16Local(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.CutoffHour != 16 {
		t.Fatalf("expected default cutoff hour 16, got %d", cfg.CutoffHour)
	}
}

func TestLoadConfigOverridesCutoff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.yaml")
	if err := os.WriteFile(path, []byte("cutoff_hour: 20\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CutoffHour != 20 {
		t.Fatalf("expected cutoff hour 20, got %d", cfg.CutoffHour)
	}
}

func TestLoadConfigRejectsOutOfRangeCutoff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.yaml")
	if err := os.WriteFile(path, []byte("cutoff_hour: 99\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for out-of-range cutoff hour")
	}
}
