package app

import (
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
)

// Output formats understood by Inspect.
const (
	FormatYAML  = "yaml"
	FormatJSON  = "json"
	FormatTable = "table"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	formats    = []string{FormatYAML, FormatJSON, FormatTable}
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Paths []string // .hcl files or directories

	LogFormat string
	LogLevel  string
	// Format is the Inspect output format.
	Format string
	// Requires limits Inspect to plugins whose declared version satisfies
	// this semver constraint.
	Requires string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.WithHint(
			errors.New("at least one definition path is required"),
			"pass .hcl files or directories as arguments, or set 'paths' in .plugdef.yaml",
		)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Format == "" {
		cfg.Format = FormatYAML
	}

	if !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, errors.Newf("invalid log-level %q: must be one of %v", cfg.LogLevel, logLevels)
	}
	if !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, errors.Newf("invalid log-format %q: must be one of %v", cfg.LogFormat, logFormats)
	}
	if !slices.Contains(formats, cfg.Format) {
		return nil, errors.Newf("invalid format %q: must be one of %v", cfg.Format, formats)
	}
	if cfg.Requires != "" {
		if _, err := semver.NewConstraint(cfg.Requires); err != nil {
			return nil, errors.WithHint(
				errors.Wrapf(err, "invalid version constraint %q", cfg.Requires),
				"use a semver constraint such as '>= 1.0, < 2'",
			)
		}
	}
	return &cfg, nil
}
