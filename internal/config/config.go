// Package config provides configuration management for schedconv.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrInvalidSemester          = errors.New("source.semester must be six digits (YYYYMM)")
	ErrSourceMissingURLOrFile   = errors.New("either source.url or source.file is required")
	ErrMissingOutputPath        = errors.New("output.path is required")
	ErrInvalidArchiveDriver     = errors.New("archive.driver must be 'sqlite' or 'postgres'")
	ErrMissingArchiveDSN        = errors.New("archive.dsn is required")
	ErrMissingServerAddr        = errors.New("server.addr is required")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
)

// Config file names searched when no explicit path is given.
const (
	LocalConfigName = "schedconv.yaml"
	HomeConfigName  = ".schedconv.yaml"
)

var semesterPattern = regexp.MustCompile(`^\d{6}$`)

// IsSemester reports whether s is a six digit YYYYMM semester code.
func IsSemester(s string) bool {
	return semesterPattern.MatchString(s)
}

// Config represents the complete schedconv configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Archive ArchiveConfig `yaml:"archive"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Retry   RetryPolicy   `yaml:"retry"`
}

// SourceConfig identifies the registrar feed for one semester.
type SourceConfig struct {
	Semester string `yaml:"semester"`
	URL      string `yaml:"url"`
	File     string `yaml:"file"`
}

// IsLocalFile returns true if this source uses a local file.
func (s *SourceConfig) IsLocalFile() bool {
	return s.File != ""
}

// GetSource returns the file path if local, or URL if remote.
func (s *SourceConfig) GetSource() string {
	if s.IsLocalFile() {
		return s.File
	}

	return s.URL
}

// OutputConfig defines where the schedb document is written.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Indent bool   `yaml:"indent"`
}

// ArchiveConfig selects the snapshot store.
type ArchiveConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	ReadTimeoutSec int    `yaml:"read_timeout_sec"`
}

// ReadTimeout returns the read timeout as a duration.
func (s *ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSec) * time.Second
}

// RetryPolicy defines retry behavior for feed downloads.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Semester: "201101",
			URL:      "http://sis.rpi.edu/reg/rocs/201101.xml",
		},
		Output: OutputConfig{
			Path:   "./out/201101.xml",
			Indent: true,
		},
		Archive: ArchiveConfig{
			Driver: "sqlite",
			DSN:    "schedconv.sqlite",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeoutSec: 15,
		},
		Retry: RetryPolicy{
			MaxAttempts:       3,
			InitialDelayMs:    500,
			MaxDelayMs:        30000,
			BackoffMultiplier: 2.0,
			TimeoutSec:        30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file. Keys missing from the
// file keep their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Resolve loads the config at path, or when path is empty the first of
// ./schedconv.yaml and $HOME/.schedconv.yaml that exists. With no file at
// all it returns DefaultConfig and an empty path.
func Resolve(path string) (*Config, string, error) {
	if path != "" {
		cfg, err := LoadConfig(path)

		return cfg, path, err
	}

	candidates := []string{LocalConfigName}

	if home, err := homedir.Dir(); err == nil {
		candidates = append(candidates, filepath.Join(home, HomeConfigName))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}

		cfg, err := LoadConfig(candidate)

		return cfg, candidate, err
	}

	return DefaultConfig(), "", nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Source.File, &c.Output.Path} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", *p, err)
		}

		*p = expanded
	}

	if c.Archive.Driver == "sqlite" {
		expanded, err := homedir.Expand(c.Archive.DSN)
		if err != nil {
			return fmt.Errorf("failed to expand archive.dsn: %w", err)
		}

		c.Archive.DSN = expanded
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Source
	if !semesterPattern.MatchString(c.Source.Semester) {
		return fmt.Errorf("%w: %q", ErrInvalidSemester, c.Source.Semester)
	}

	if c.Source.URL == "" && c.Source.File == "" {
		return ErrSourceMissingURLOrFile
	}

	if c.Output.Path == "" {
		return ErrMissingOutputPath
	}

	// Archive
	if c.Archive.Driver != "sqlite" && c.Archive.Driver != "postgres" {
		return ErrInvalidArchiveDriver
	}

	if c.Archive.DSN == "" {
		return ErrMissingArchiveDSN
	}

	if c.Server.Addr == "" {
		return ErrMissingServerAddr
	}

	// Validate retry policy
	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	// Validate logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// GetOutputPath returns output.path, or <dir of output.path>/<semester>.xml
// when a different semester is requested.
func (c *Config) GetOutputPath(semester string) string {
	if semester == "" || semester == c.Source.Semester {
		return c.Output.Path
	}

	return filepath.Join(filepath.Dir(c.Output.Path), semester+".xml")
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Semester: %s, Source: %s, Archive: %s, MaxAttempts: %d}",
		c.Source.Semester,
		c.Source.GetSource(),
		c.Archive.Driver,
		c.Retry.MaxAttempts,
	)
}
