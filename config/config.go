// Package config provides run configuration for the course scraper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrEmptyBaseURL       = errors.New("base URL cannot be empty")
	ErrBaseURLHost        = errors.New("base URL must include a host")
	ErrInvalidPageSize    = errors.New("page max size must be positive")
	ErrInvalidMaxPages    = errors.New("max pages cannot be negative")
	ErrNegativeDelay      = errors.New("delay cannot be negative")
	ErrInvalidTimeout     = errors.New("timeout must be positive")
	ErrInvalidAuthRetries = errors.New("auth retries must be at least 1")
	ErrInvalidTermCount   = errors.New("term count must be positive")
	ErrEmptyOutputFile    = errors.New("output file cannot be empty")
	ErrInvalidFormat      = errors.New("output format must be csv, json, or dual")
	ErrEmptyUserAgent     = errors.New("user agent cannot be empty")
)

// Config holds scraper configuration.
type Config struct {
	BaseURL        string
	LandingURL     string
	Campus         string
	PageMaxSize    int
	MaxPages       int // 0 means no ceiling
	PageDelay      time.Duration
	CourseDelay    time.Duration
	AuthRetries    int
	AuthRetryDelay time.Duration
	Timeout        time.Duration
	UserAgent      string
	TermCount      int
	OutputFile     string
	OutputFormat   string // csv, json, or dual
	MetricsAddr    string
	CalendarFile   string
	ClassroomFile  string
	Verbose        bool
}

// DefaultConfig returns the defaults used against the production service.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://nubanner.neu.edu/StudentRegistrationSsb/ssb",
		LandingURL:     "https://nubanner.neu.edu/StudentRegistrationSsb/",
		Campus:         "OAK",
		PageMaxSize:    500,
		MaxPages:       0,
		PageDelay:      500 * time.Millisecond,
		CourseDelay:    200 * time.Millisecond,
		AuthRetries:    3,
		AuthRetryDelay: 2 * time.Second,
		Timeout:        15 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		TermCount:      2,
		OutputFile:     "output/courses.csv",
		OutputFormat:   "csv",
		MetricsAddr:    "",
		CalendarFile:   "",
		ClassroomFile:  "",
		Verbose:        false,
	}
}

// fileConfig mirrors Config for YAML decoding. Pointers distinguish
// "absent" from "zero", and durations are parsed from strings like
// "500ms" or "2s".
type fileConfig struct {
	BaseURL        *string `yaml:"base_url"`
	LandingURL     *string `yaml:"landing_url"`
	Campus         *string `yaml:"campus"`
	PageMaxSize    *int    `yaml:"page_max_size"`
	MaxPages       *int    `yaml:"max_pages"`
	PageDelay      *string `yaml:"page_delay"`
	CourseDelay    *string `yaml:"course_delay"`
	AuthRetries    *int    `yaml:"auth_retries"`
	AuthRetryDelay *string `yaml:"auth_retry_delay"`
	Timeout        *string `yaml:"timeout"`
	UserAgent      *string `yaml:"user_agent"`
	TermCount      *int    `yaml:"term_count"`
	OutputFile     *string `yaml:"output_file"`
	OutputFormat   *string `yaml:"output_format"`
	MetricsAddr    *string `yaml:"metrics_addr"`
	CalendarFile   *string `yaml:"calendar_file"`
	ClassroomFile  *string `yaml:"classroom_file"`
	Verbose        *bool   `yaml:"verbose"`
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setDuration := func(dst *time.Duration, src *string, key string) error {
		if src == nil {
			return nil
		}
		parsed, err := time.ParseDuration(*src)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = parsed
		return nil
	}

	setString(&cfg.BaseURL, file.BaseURL)
	setString(&cfg.LandingURL, file.LandingURL)
	setString(&cfg.Campus, file.Campus)
	setInt(&cfg.PageMaxSize, file.PageMaxSize)
	setInt(&cfg.MaxPages, file.MaxPages)
	setInt(&cfg.AuthRetries, file.AuthRetries)
	setInt(&cfg.TermCount, file.TermCount)
	setString(&cfg.UserAgent, file.UserAgent)
	setString(&cfg.OutputFile, file.OutputFile)
	setString(&cfg.OutputFormat, file.OutputFormat)
	setString(&cfg.MetricsAddr, file.MetricsAddr)
	setString(&cfg.CalendarFile, file.CalendarFile)
	setString(&cfg.ClassroomFile, file.ClassroomFile)
	if file.Verbose != nil {
		cfg.Verbose = *file.Verbose
	}
	if err := setDuration(&cfg.PageDelay, file.PageDelay, "page_delay"); err != nil {
		return nil, err
	}
	if err := setDuration(&cfg.CourseDelay, file.CourseDelay, "course_delay"); err != nil {
		return nil, err
	}
	if err := setDuration(&cfg.AuthRetryDelay, file.AuthRetryDelay, "auth_retry_delay"); err != nil {
		return nil, err
	}
	if err := setDuration(&cfg.Timeout, file.Timeout, "timeout"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrEmptyBaseURL
	}
	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsed.Host == "" {
		return ErrBaseURLHost
	}
	if c.PageMaxSize <= 0 {
		return ErrInvalidPageSize
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.PageDelay < 0 || c.CourseDelay < 0 || c.AuthRetryDelay < 0 {
		return ErrNegativeDelay
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.AuthRetries < 1 {
		return ErrInvalidAuthRetries
	}
	if c.TermCount <= 0 {
		return ErrInvalidTermCount
	}
	if c.OutputFile == "" {
		return ErrEmptyOutputFile
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return ErrInvalidFormat
	}
	if c.UserAgent == "" {
		return ErrEmptyUserAgent
	}
	return nil
}

// EnvString reads a string environment variable, reporting presence.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// EnvInt reads an integer environment variable, reporting presence.
func EnvInt(key string) (int, bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, true, nil
}
