// Package config provides YAML configuration parsing for wrtrack.
//
// Example configuration:
//
//	endpoint: https://records.example.com/api/courses
//	courses_file: courses.json
//	history_file: history.json
//	poll_interval: 120s
//	retry_attempts: 10
//	retry_wait: 20s
//	request_timeout: 30s
//	metrics_addr: ":9090"
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Reference defaults for the poll loop. Any of them can be overridden in the
// config file without changing core semantics.
const (
	defaultPollInterval   = 120 * time.Second
	defaultRetryAttempts  = 10
	defaultRetryWait      = 20 * time.Second
	defaultRequestTimeout = 30 * time.Second
)

// minPollInterval prevents accidentally hammering a rate-sensitive upstream.
const minPollInterval = 1 * time.Second

// Config is the root configuration structure for wrtrack.
//
// It maps directly to the YAML configuration file structure. Use [Load] or
// [Parse] to create a Config from YAML.
type Config struct {
	// Endpoint is the batch-query URL of the records API.
	Endpoint string `yaml:"endpoint"`

	// CoursesFile is the path of a JSON array of course IDs to track.
	CoursesFile string `yaml:"courses_file"`

	// HistoryFile is the path of the durable record history.
	HistoryFile string `yaml:"history_file"`

	// PollInterval is the target period of the poll loop.
	// Accepts duration strings like "120s", "2m". Defaults to 120s.
	PollInterval Duration `yaml:"poll_interval"`

	// RetryAttempts is the number of fetch attempts per cycle. Defaults to 10.
	RetryAttempts int `yaml:"retry_attempts"`

	// RetryWait is the flat wait between fetch attempts. Defaults to 20s.
	RetryWait Duration `yaml:"retry_wait"`

	// RequestTimeout bounds a single fetch attempt. Defaults to 30s.
	RequestTimeout Duration `yaml:"request_timeout"`

	// MetricsAddr, if set, serves Prometheus metrics on this address
	// (e.g. ":9090"). Empty disables the metrics endpoint.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data, applies defaults, and validates the
// result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.PollInterval == 0 {
		cfg.PollInterval = Duration(defaultPollInterval)
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}
	if cfg.RetryWait == 0 {
		cfg.RetryWait = Duration(defaultRetryWait)
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = Duration(defaultRequestTimeout)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks the config for values that would misbehave at runtime.
func (c *Config) validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	parsed, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("endpoint scheme must be http or https, got %q", parsed.Scheme)
	}

	if c.CoursesFile == "" {
		return errors.New("courses_file is required")
	}
	if c.HistoryFile == "" {
		return errors.New("history_file is required")
	}

	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be at least 1, got %d", c.RetryAttempts)
	}
	if c.RetryWait.Duration() < 0 {
		return fmt.Errorf("retry_wait cannot be negative, got %s", c.RetryWait.Duration())
	}
	if c.RequestTimeout.Duration() < time.Second {
		return fmt.Errorf("request_timeout must be at least 1s, got %s", c.RequestTimeout.Duration())
	}

	return nil
}
