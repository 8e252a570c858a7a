// Package config holds the project configuration and the shared constants
// of the source subset.
//
// Configuration lives in cgen.yaml next to the translated sources. All
// fields are optional; zero values fall back to the defaults documented on
// each field.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level cgen.yaml configuration.
type Config struct {
	// Style controls the rendering of the emitted C text.
	Style StyleOptions `yaml:"style,omitempty"`

	// WarningsAsErrors promotes warning-severity memory findings to
	// errors, blocking emission of the affected unit.
	WarningsAsErrors bool `yaml:"warnings_as_errors,omitempty"`

	// Parallelism is the number of functions translated concurrently.
	// Values below 1 mean sequential translation. Safe because the
	// record registry is frozen before any function-level work starts.
	Parallelism int `yaml:"parallelism,omitempty"`

	// Output is the path of the emitted C file. Defaults to the input
	// name with a .c extension.
	Output string `yaml:"output,omitempty"`

	// ReportDB is an optional SQLite database path; when set, memory
	// safety findings are stored there in addition to stderr.
	ReportDB string `yaml:"report_db,omitempty"`
}

// StyleOptions is consumed only by the cfile writer, never by the core.
type StyleOptions struct {
	// IndentWidth is the number of spaces per indentation level.
	// Defaults to 4.
	IndentWidth int `yaml:"indent_width,omitempty"`

	// BraceSameLine places the opening brace on the same line (K&R)
	// instead of its own line (Allman). Defaults to true.
	BraceSameLine *bool `yaml:"brace_same_line,omitempty"`
}

// Default returns the configuration used when no cgen.yaml is present.
func Default() *Config {
	same := true
	return &Config{
		Style: StyleOptions{IndentWidth: 4, BraceSameLine: &same},
	}
}

// Load reads and validates a cgen.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Style.IndentWidth <= 0 {
		cfg.Style.IndentWidth = 4
	}
	if cfg.Style.BraceSameLine == nil {
		same := true
		cfg.Style.BraceSameLine = &same
	}
	return cfg, nil
}
