// Package config provides the YAML run configuration of survey-curator.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"survey-curator/internal/convert"
	"survey-curator/internal/dataset"
	"survey-curator/internal/library"
	"survey-curator/internal/mapping"
	"survey-curator/internal/validate"
)

// Config represents one run configuration
type Config struct {
	Library LibraryConfig `yaml:"library"`
	// Modality is the output datatype (default: survey)
	Modality string `yaml:"modality"`
	// IDColumn names the subject id column (empty = auto-detect)
	IDColumn string `yaml:"id_column"`
	// SessionColumn names the session column (empty = auto-detect)
	SessionColumn  string `yaml:"session_column"`
	DefaultSession string `yaml:"default_session"`
	// Unmapped is the unmapped column policy: error, warn or ignore
	Unmapped string `yaml:"unmapped"`
	// Strict is the validation mode: auto, strict or tolerant
	Strict string `yaml:"strict"`
	// Source is the export kind used by strict: auto (spreadsheet or archive)
	Source string `yaml:"source"`
	// Tasks restricts the run to these library tasks
	Tasks []string `yaml:"tasks,omitempty"`
	// Version restricts output to items of one instrument version
	Version           string   `yaml:"version"`
	AliasFile         string   `yaml:"alias_file"`
	Language          string   `yaml:"language"`
	FallbackLanguages []string `yaml:"fallback_languages"`
	Overwrite         bool     `yaml:"overwrite"`
	DatasetName       string   `yaml:"dataset_name"`
	// Columns maps raw input columns to item ids
	Columns map[string]string `yaml:"columns,omitempty"`
	// Ignore lists raw input columns excluded from mapping
	Ignore []string `yaml:"ignore,omitempty"`
}

// LibraryConfig locates the template libraries
type LibraryConfig struct {
	Local    string   `yaml:"local"`
	Official string   `yaml:"official"`
	Patterns []string `yaml:"patterns"`
}

// Export kinds accepted by Source
const (
	SourceSpreadsheet = "spreadsheet"
	SourceArchive     = "archive"
)

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			Local:    "library",
			Patterns: append([]string(nil), library.DefaultPatterns...),
		},
		Modality:          dataset.DefaultModality,
		DefaultSession:    dataset.DefaultSession,
		Unmapped:          string(mapping.PolicyWarn),
		Strict:            "auto",
		Source:            SourceSpreadsheet,
		FallbackLanguages: []string{"en"},
		DatasetName:       "survey dataset",
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Library.Local == "" && c.Library.Official == "" {
		return fmt.Errorf("library.local or library.official is required")
	}

	if _, err := mapping.ParsePolicy(c.Unmapped); err != nil {
		return fmt.Errorf("unmapped: %w", err)
	}

	src, err := c.source()
	if err != nil {
		return err
	}

	if _, err := validate.ParseMode(c.Strict, src); err != nil {
		return fmt.Errorf("strict: %w", err)
	}

	if c.Modality == "" {
		return fmt.Errorf("modality is required")
	}

	return nil
}

func (c *Config) source() (validate.Source, error) {
	switch c.Source {
	case "", SourceSpreadsheet:
		return validate.SourceSpreadsheet, nil
	case SourceArchive:
		return validate.SourceArchive, nil
	default:
		return 0, fmt.Errorf("source: unknown export kind %q (want spreadsheet or archive)", c.Source)
	}
}

// LibraryDirs returns the library directories in load order. The local
// library comes last so it shadows the official one.
func (c *Config) LibraryDirs() []string {
	var dirs []string

	for _, d := range []string{c.Library.Official, c.Library.Local} {
		if d != "" {
			dirs = append(dirs, d)
		}
	}

	return dirs
}

// ConvertOptions translates the configuration into conversion options.
func (c *Config) ConvertOptions(logger *slog.Logger) (convert.Options, error) {
	if err := c.Validate(); err != nil {
		return convert.Options{}, err
	}

	policy, _ := mapping.ParsePolicy(c.Unmapped)
	src, _ := c.source()
	mode, _ := validate.ParseMode(c.Strict, src)

	opts := convert.DefaultOptions()
	opts.Modality = c.Modality
	opts.IDColumn = c.IDColumn
	opts.SessionColumn = c.SessionColumn
	opts.DefaultSession = c.DefaultSession
	opts.Unmapped = policy
	opts.Mode = mode
	opts.Overrides = c.Columns
	opts.Ignore = c.Ignore
	opts.AliasFile = c.AliasFile
	opts.Language = c.Language
	opts.Fallbacks = c.FallbackLanguages
	opts.Tasks = c.Tasks
	opts.Version = c.Version
	opts.Overwrite = c.Overwrite
	opts.DatasetName = c.DatasetName
	opts.Logger = logger

	return opts, nil
}

// LoadFromFile loads configuration from a YAML file on top of the
// defaults. Relative paths are resolved against the file's directory.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.resolvePaths(filepath.Dir(path))

	return config, nil
}

func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Library.Local, &c.Library.Official, &c.AliasFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
