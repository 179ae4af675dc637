// Package config loads pipeline configuration from environment variables
// and an optional YAML file, and resolves the directory layout.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete pipeline configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Store   StoreConfig   `yaml:"store" envconfig:"STORE"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/pipeline.log"`
}

// PathsConfig contains the directory layout.
type PathsConfig struct {
	DataDir     string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data" validate:"required"`
	ExtractsDir string `yaml:"extracts_dir" envconfig:"EXTRACTS_DIR" default:"data/extracts"`
	ArchiveDir  string `yaml:"archive_dir" envconfig:"ARCHIVE_DIR" default:"data/archive"`
	StoresDir   string `yaml:"stores_dir" envconfig:"STORES_DIR" default:"data/stores"`
	TablesDir   string `yaml:"tables_dir" envconfig:"TABLES_DIR" default:"data/tables"`
	LogsDir     string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// StoreConfig controls persistence and identifier hashing.
type StoreConfig struct {
	// Format selects the preferred serialization format; the loader falls
	// back to the other format when the preferred file is absent.
	Format string `yaml:"format" envconfig:"FORMAT" default:"binary" validate:"oneof=binary csv"`
	// HashSalt salts identifier hashing. Empty degrades to a built-in
	// default with a loud warning; it never blocks a batch run.
	HashSalt string `yaml:"hash_salt" envconfig:"HASH_SALT"`
	// AuthoritativeMap is the hand-curated lookup mappings file.
	AuthoritativeMap string `yaml:"authoritative_map" envconfig:"AUTHORITATIVE_MAP" default:"data/authoritative.yaml"`
	// ExclusionList is the maintained course exclusion list file, one
	// course identifier per line. Optional.
	ExclusionList string `yaml:"exclusion_list" envconfig:"EXCLUSION_LIST" default:"data/excluded_courses.txt"`
}

// PreferBinary reports whether the binary store format is preferred.
func (s StoreConfig) PreferBinary() bool { return s.Format == "binary" }

// Load loads configuration from environment variables (prefix SIS) layered
// over an optional YAML file.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Environment variables override file values and fill defaults.
	if err := envconfig.Process("SIS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// SummaryPath returns the run summary file location.
func (p PathsConfig) SummaryPath() string {
	return filepath.Join(p.LogsDir, "run_summary.log")
}

// EnsureDirectories creates every configured directory.
func (p PathsConfig) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ExtractsDir, p.ArchiveDir, p.StoresDir, p.TablesDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
