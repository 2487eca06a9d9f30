package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/repasses-dev/repasses/internal/model"
	"github.com/repasses-dev/repasses/internal/source"
)

// FileName is the config file looked up by default.
const FileName = "repasses.yaml"

// Environment variables that override file values.
const (
	EnvSource      = "REPASSES_SOURCE"
	EnvFormat      = "REPASSES_FORMAT"
	EnvLogLevel    = "REPASSES_LOG_LEVEL"
	EnvCredentials = "REPASSES_CREDENTIALS"
)

// Config represents the top-level repasses.yaml configuration.
type Config struct {
	Source         SourceConfig `yaml:"source"`
	Municipalities []string     `yaml:"municipalities"`
	TopN           int          `yaml:"top_n"`
	Cache          CacheConfig  `yaml:"cache"`
	Log            LogConfig    `yaml:"log"`
}

// SourceConfig locates the disbursement data.
type SourceConfig struct {
	Path            string `yaml:"path"`
	Format          string `yaml:"format,omitempty"` // detected from Path when empty
	Sheet           string `yaml:"sheet,omitempty"`
	Table           string `yaml:"table,omitempty"`
	CredentialsFile string `yaml:"credentials_file,omitempty"`
}

// CacheConfig bounds the result cache.
type CacheConfig struct {
	MaxEntries int           `yaml:"max_entries"`
	TTL        time.Duration `yaml:"ttl"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a repasses.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Resolve builds the effective configuration: defaults, then the file at
// path if it exists, then .env and process environment overrides.
// Relative file paths in the config file are taken from its directory.
func Resolve(path string) (*Config, error) {
	cfg, err := Load(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = Default()
	case err != nil:
		return nil, err
	default:
		dir := filepath.Dir(path)
		cfg.Source.Path = relativeTo(dir, cfg.Source.Path)
		cfg.Source.CredentialsFile = relativeTo(dir, cfg.Source.CredentialsFile)
	}
	_ = godotenv.Load()
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func relativeTo(dir, p string) string {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, source.SheetsPrefix) {
		return p
	}
	return filepath.Join(dir, p)
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Path: "data/repasses.xlsx",
		},
		Municipalities: []string{"cotia"},
		TopN:           10,
		Cache: CacheConfig{
			MaxEntries: 128,
			TTL:        30 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvSource); ok && v != "" {
		c.Source.Path = v
	}
	if v, ok := lookup(EnvFormat); ok && v != "" {
		c.Source.Format = strings.ToLower(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvCredentials); ok && v != "" {
		c.Source.CredentialsFile = v
	}
}

// SourceFormat returns the configured format, or the one implied by the
// source path.
func (c *Config) SourceFormat() (string, error) {
	if c.Source.Format != "" {
		return c.Source.Format, nil
	}
	return source.DetectFormat(c.Source.Path)
}

// SourceOptions returns the reader options for the configured source.
func (c *Config) SourceOptions() source.Options {
	return source.Options{
		Sheet:           c.Source.Sheet,
		Table:           c.Source.Table,
		CredentialsFile: c.Source.CredentialsFile,
	}
}

var (
	validFormats = []string{source.FormatXLSX, source.FormatCSV, source.FormatSheets, source.FormatSQLite}
	validLevels  = []string{"debug", "info", "warn", "error"}
)

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Source.Path) == "" {
		problems = append(problems, "source path cannot be empty")
	}
	if c.Source.Format != "" && !slices.Contains(validFormats, c.Source.Format) {
		problems = append(problems, fmt.Sprintf("invalid source format '%s': must be one of %v", c.Source.Format, validFormats))
	}
	if len(model.NormalizeMunicipalities(c.Municipalities)) == 0 {
		problems = append(problems, "at least one municipality is required")
	}
	if c.TopN < 1 {
		problems = append(problems, fmt.Sprintf("invalid top_n %d: must be at least 1", c.TopN))
	}
	if c.Cache.MaxEntries < 0 {
		problems = append(problems, fmt.Sprintf("invalid cache max_entries %d: must not be negative", c.Cache.MaxEntries))
	}
	if c.Cache.TTL < 0 {
		problems = append(problems, fmt.Sprintf("invalid cache ttl %v: must not be negative", c.Cache.TTL))
	}
	if !slices.Contains(validLevels, c.Log.Level) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %v", c.Log.Level, validLevels))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
