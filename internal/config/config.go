// Package config resolves the settings of a send-dtmf invocation.
//
// Values come from three layers, later ones winning: built-in defaults, an
// optional YAML file, and command-line flags the user set explicitly.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/aretw0/senddtmf/internal/logging"
	"github.com/aretw0/senddtmf/pkg/ctrlfile"
	"gopkg.in/yaml.v3"
)

// Config holds the resolved settings.
type Config struct {
	ControlPath string         `yaml:"control_path"`
	Settle      time.Duration  `yaml:"settle"`
	OpenTimeout time.Duration  `yaml:"open_timeout"`
	Strict      bool           `yaml:"strict"`
	MetricsFile string         `yaml:"metrics_file"`
	Debug       bool           `yaml:"debug"`
	LogFormat   logging.Format `yaml:"log_format"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		ControlPath: ctrlfile.DefaultPath,
		Settle:      ctrlfile.DefaultSettle,
		LogFormat:   logging.FormatText,
	}
}

// Load reads a YAML file on top of the defaults.
// An empty path returns the defaults. Unlike an absent default, an explicitly
// named file that is missing is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the writer cannot use.
func (c Config) Validate() error {
	if c.ControlPath == "" {
		return fmt.Errorf("control_path must not be empty")
	}
	if c.Settle < 0 {
		return fmt.Errorf("settle must not be negative, got %s", c.Settle)
	}
	if c.OpenTimeout < 0 {
		return fmt.Errorf("open_timeout must not be negative, got %s", c.OpenTimeout)
	}
	if _, err := logging.ParseFormat(string(c.LogFormat)); err != nil {
		return err
	}
	return nil
}

// WriterOptions translates the settings into ctrlfile options.
func (c Config) WriterOptions() []ctrlfile.Option {
	return []ctrlfile.Option{
		ctrlfile.WithSettle(c.Settle),
		ctrlfile.WithOpenTimeout(c.OpenTimeout),
	}
}
