// Package config loads and validates a backport run's configuration,
// merging an optional YAML file on disk with CLI flag overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full set of knobs a backport run takes, matching the CLI
// flag surface §6 describes: input_dir, source_fw, target_fw, the five
// optional mutating steps, the knowledge-base and patch-database
// locations, the external decrypter paths, and output locations.
type Config struct {
	InputDir string `yaml:"input_dir"`
	FWSource string `yaml:"fw_current"`
	FWTarget string `yaml:"fw_target"`

	ApplyBPS    bool `yaml:"apply_bps"`
	StubMissing bool `yaml:"stub_missing"`
	Resign      bool `yaml:"resign"`
	PatchSDK    bool `yaml:"patch_sdk"`
	PatchParam  bool `yaml:"patch_param"`

	ExportsDir        string `yaml:"exports_dir"`
	PatchDBPath       string `yaml:"patch_db_path"`
	ExternalDecrypter string `yaml:"external_decrypter_path"`
	Selfutil          string `yaml:"selfutil_path"`

	OutputDir        string `yaml:"output_dir"`
	OutputReportPath string `yaml:"output_report_path"`
	NoColor          bool   `yaml:"no_color"`

	// RulesScript optionally names a JavaScript file overriding how a
	// library's compatibility action is chosen; see internal/rules.
	RulesScript string `yaml:"rules_script"`
}

// Defaults returns a Config with the same fallbacks the reference CLI
// bakes in: an exports directory of "data/exports" and a patch database
// of "data/patch_database.json", both resolved relative to the
// current working directory.
func Defaults() Config {
	return Config{
		ExportsDir:  "data/exports",
		PatchDBPath: "data/patch_database.json",
	}
}

// Load reads a YAML config file, starting from Defaults. A missing file
// is not an error: callers rely entirely on CLI flags in that case.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the minimum fields a run needs are present.
func (c Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input_dir is required")
	}
	if c.FWSource == "" || c.FWTarget == "" {
		return fmt.Errorf("fw_current and fw_target are required")
	}
	return nil
}
