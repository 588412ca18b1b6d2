package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ExportsDir != "data/exports" {
		t.Fatalf("unexpected default ExportsDir: %q", cfg.ExportsDir)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "input_dir: /games\nfw_current: \"10.01\"\nfw_target: \"6.00\"\napply_bps: true\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.InputDir != "/games" || cfg.FWSource != "10.01" || cfg.FWTarget != "6.00" || !cfg.ApplyBPS {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.ExportsDir != "data/exports" {
		t.Fatalf("expected default ExportsDir to survive merge, got %q", cfg.ExportsDir)
	}
}

func TestValidateRequiresInputAndFirmwares(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty config")
	}
	cfg.InputDir = "/games"
	cfg.FWSource = "10.01"
	cfg.FWTarget = "6.00"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
