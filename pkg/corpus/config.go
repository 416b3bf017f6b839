package corpus

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CheckConfig is the file-based configuration for corpus checks, kept next
// to the corpus so CI and developers run the same check.
type CheckConfig struct {
	Version string       `yaml:"version"`
	Corpus  CorpusPaths  `yaml:"corpus"`
	Output  string       `yaml:"output"`
	Check   CheckOptions `yaml:"check"`
}

// CorpusPaths locates the namespace roots, relative to the config file's
// directory unless absolute.
type CorpusPaths struct {
	Interfaces  string `yaml:"interfaces"`
	Diagnostics string `yaml:"diagnostics"`
}

// CheckOptions tunes a run.
type CheckOptions struct {
	Concurrency int  `yaml:"concurrency"`
	CacheSize   int  `yaml:"cache_size"`
	NoCache     bool `yaml:"no_cache"`
}

// DefaultCheckConfig returns the conventional layout: someip/ and diag/
// subtrees next to the config file, text output, in-process cache.
func DefaultCheckConfig() *CheckConfig {
	return &CheckConfig{
		Version: "v1",
		Corpus: CorpusPaths{
			Interfaces:  "someip",
			Diagnostics: "diag",
		},
		Output: "text",
		Check: CheckOptions{
			Concurrency: 4,
			CacheSize:   1024,
		},
	}
}

// LoadCheckConfig loads configuration from a file.
func LoadCheckConfig(path string) (*CheckConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultCheckConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse check config %s: %w", path, err)
	}
	return config, nil
}

// LoadCheckConfigFromDir searches dir for a check config file and falls back
// to defaults when none exists.
func LoadCheckConfigFromDir(dir string) (*CheckConfig, error) {
	configNames := []string{".axle.yaml", ".axle.yml", "axle.yaml", "axle.yml"}

	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadCheckConfig(path)
		}
	}
	return DefaultCheckConfig(), nil
}

// SaveCheckConfig writes configuration to a file, for `axle-cli check --init`.
func SaveCheckConfig(config *CheckConfig, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Resolve returns the namespace roots anchored at baseDir.
func (c *CorpusPaths) Resolve(baseDir string) (interfacesDir, diagnosticsDir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}
	return resolve(c.Interfaces), resolve(c.Diagnostics)
}
