// Package config loads the optional .brew-vulns.yaml configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Homebrew/homebrew-brew-vulns/pkg/osv"
)

// DefaultPath is where the config file is looked for when no --config flag
// is given.
const DefaultPath = ".brew-vulns.yaml"

// Config is the file schema. All fields are optional; CLI flags take
// precedence over file values.
type Config struct {
	// Format selects the default output format: "table", "markdown" or
	// "json".
	Format string `yaml:"format"`
	// Ignore lists vulnerability IDs (or aliases, e.g. CVE numbers) to
	// drop from reports.
	Ignore []string `yaml:"ignore"`
	OSV    OSV      `yaml:"osv"`
}

// OSV configures the vulnerability-database client.
type OSV struct {
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
}

// Duration wraps time.Duration so "5s"-style values parse from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("failed to parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Format: "markdown",
		OSV:    OSV{BaseURL: osv.DefaultBaseURL},
	}
}

// Load reads and parses the config file at path, filling unset fields with
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.Format == "" {
		cfg.Format = "markdown"
	}
	if cfg.OSV.BaseURL == "" {
		cfg.OSV.BaseURL = osv.DefaultBaseURL
	}
	return cfg, nil
}

// Ignored reports whether a vulnerability, identified by its ID or any of
// its aliases, is on the ignore list.
func (c *Config) Ignored(vuln osv.Vulnerability) bool {
	for _, ignored := range c.Ignore {
		if vuln.ID == ignored {
			return true
		}
		for _, alias := range vuln.Aliases {
			if alias == ignored {
				return true
			}
		}
	}
	return false
}
