// Package config provides YAML configuration parsing for linkmonitor.
//
// This package enables running linkmonitor as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Monitor Link 24H
//	data_dir: ./data
//	mode: loop
//	interval_minutes: 10
//	proxy: ${PROXY_URL:-}
//
//	retry:
//	  max_attempts: 3
//	  backoff: 1s
//	  proxy_backoff: 2s
//
//	logging:
//	  level: info
//	  format: json
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

// Cycle modes.
const (
	ModeLoop    = "loop"
	ModeTrigger = "trigger"
)

// Log levels and formats accepted under logging.
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelWarning = "warning"
	LogLevelError   = "error"

	LogFormatJSON = "json"
	LogFormatText = "text"
)

// maxHeartbeatInterval keeps the waiting heartbeat well inside the 720s
// window after which observers report the checker offline.
const maxHeartbeatInterval = 720 * time.Second

// Config is the root configuration structure for linkmonitor.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is reported by the API. Optional.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// DataDir holds data_monitoring.json and status_info.json.
	// Defaults to the working directory.
	DataDir string `yaml:"data_dir"`

	// Mode is "loop" (default) or "trigger".
	Mode string `yaml:"mode"`

	// IntervalMinutes is the period between cycle starts. Defaults to 10.
	IntervalMinutes int `yaml:"interval_minutes"`

	// Proxy is routed through for every check; empty means direct.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Proxy string `yaml:"proxy"`

	// SeedURL is written on first boot when no list exists. An explicit
	// empty value seeds an empty list.
	SeedURL string `yaml:"seed_url"`

	// Timeout is the per-request timeout for direct checks. Defaults to 20s.
	Timeout Duration `yaml:"timeout"`

	// ProxyTimeout is the per-request timeout through the proxy.
	// Defaults to 30s.
	ProxyTimeout Duration `yaml:"proxy_timeout"`

	// PolitenessDelay is the pause between two targets. Defaults to 500ms;
	// 0s disables it.
	PolitenessDelay Duration `yaml:"politeness_delay"`

	// HeartbeatInterval is how often the waiting loop refreshes its
	// liveness record. Defaults to 10s.
	HeartbeatInterval Duration `yaml:"heartbeat_interval"`

	// SlowThreshold reports slower 200s as LAMBAT. 0s (default) disables it.
	SlowThreshold Duration `yaml:"slow_threshold"`

	Retry   RetryConfig   `yaml:"retry"`
	Logging LoggingConfig `yaml:"logging"`
}

// RetryConfig bounds the attempts made for one target.
type RetryConfig struct {
	MaxAttempts  int      `yaml:"max_attempts"`
	Backoff      Duration `yaml:"backoff"`
	ProxyBackoff Duration `yaml:"proxy_backoff"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
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

// Default returns the configuration used for keys absent from the file.
func Default() Config {
	return Config{
		Port:              8080,
		DataDir:           ".",
		Mode:              ModeLoop,
		IntervalMinutes:   10,
		SeedURL:           "https://google.com",
		Timeout:           Duration(20 * time.Second),
		ProxyTimeout:      Duration(30 * time.Second),
		PolitenessDelay:   Duration(500 * time.Millisecond),
		HeartbeatInterval: Duration(10 * time.Second),
		Retry: RetryConfig{
			MaxAttempts:  3,
			Backoff:      Duration(time.Second),
			ProxyBackoff: Duration(2 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatJSON,
		},
	}
}

// Interval returns IntervalMinutes as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Keys absent from data keep their [Default] value, so an empty document is
// a valid configuration. Environment variables are expanded in title,
// data_dir, proxy and seed_url.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// expand substitutes environment variables in the string fields that
// commonly carry secrets or deployment paths.
func (c *Config) expand() error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"title", &c.Title},
		{"data_dir", &c.DataDir},
		{"proxy", &c.Proxy},
		{"seed_url", &c.SeedURL},
	}
	for _, f := range fields {
		expanded, err := expandEnvVars(*f.ptr)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.ptr = expanded
	}
	return nil
}

// Validate checks every field. The returned error is a
// [validation.Errors] keyed by struct field name.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.Mode, validation.Required, validation.In(ModeLoop, ModeTrigger)),
		validation.Field(&c.IntervalMinutes, validation.Required, validation.Min(1)),
		validation.Field(&c.SeedURL, is.URL),
		validation.Field(&c.Timeout, validation.By(positiveDuration)),
		validation.Field(&c.ProxyTimeout, validation.By(positiveDuration)),
		validation.Field(&c.PolitenessDelay, validation.By(nonNegativeDuration)),
		validation.Field(&c.HeartbeatInterval, validation.By(positiveDuration), validation.By(belowStaleThreshold)),
		validation.Field(&c.SlowThreshold, validation.By(nonNegativeDuration)),
		validation.Field(&c.Retry),
		validation.Field(&c.Logging),
	)
}

// Validate implements [validation.Validatable].
func (r RetryConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MaxAttempts, validation.Required, validation.Min(1)),
		validation.Field(&r.Backoff, validation.By(nonNegativeDuration)),
		validation.Field(&r.ProxyBackoff, validation.By(nonNegativeDuration)),
	)
}

// Validate implements [validation.Validatable].
func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level,
			validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelWarning, LogLevelError),
		),
		validation.Field(&l.Format,
			validation.Required,
			validation.In(LogFormatJSON, LogFormatText),
		),
	)
}

func positiveDuration(value interface{}) error {
	d, ok := value.(Duration)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a duration")
	}
	if d <= 0 {
		return validation.NewError("validation_duration_positive", "must be greater than 0s")
	}
	return nil
}

func nonNegativeDuration(value interface{}) error {
	d, ok := value.(Duration)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a duration")
	}
	if d < 0 {
		return validation.NewError("validation_duration_negative", "cannot be negative")
	}
	return nil
}

func belowStaleThreshold(value interface{}) error {
	d, ok := value.(Duration)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a duration")
	}
	if d.Duration() >= maxHeartbeatInterval {
		return validation.NewError("validation_heartbeat_too_long",
			fmt.Sprintf("must be below %s", maxHeartbeatInterval))
	}
	return nil
}
