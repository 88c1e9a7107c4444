// Copyright 2025 Certen Protocol
//
// Engine configuration loader: YAML files with environment variable
// substitution, matching the anchor service's configuration conventions.

package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ==============================================================================
// Engine Configuration Structures
// ==============================================================================

// EngineConfig holds all timestamp-engine configuration.
type EngineConfig struct {
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`

	Crypto     CryptoSettings     `yaml:"crypto"`
	Detached   DetachedSettings   `yaml:"detached"`
	Calendars  CalendarSettings   `yaml:"calendars"`
	Metrics    MetricsSettings    `yaml:"metrics"`
	Logging    LoggingSettings    `yaml:"logging"`
}

// CryptoSettings selects the default crypto op new timestamps are built with.
type CryptoSettings struct {
	DefaultOp string `yaml:"default_op"` // one of: sha256, sha1, ripemd160, keccak256
}

// DetachedSettings bounds the digest lengths a detached file will accept.
type DetachedSettings struct {
	MinDigestLength int `yaml:"min_digest_length"`
	MaxDigestLength int `yaml:"max_digest_length"`
}

// CalendarSettings lists the calendar servers allowed to contribute Pending
// attestations, and how long to wait on them.
type CalendarSettings struct {
	AllowedURIs    []string `yaml:"allowed_uris"`
	RequestTimeout Duration `yaml:"request_timeout"`
	MaxRetries     int      `yaml:"max_retries"`
	RetryDelay     Duration `yaml:"retry_delay"`
}

// MetricsSettings controls the Prometheus exporter.
type MetricsSettings struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// LoggingSettings controls the engine's structured logger.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Output string `yaml:"output"`
}

// ==============================================================================
// Duration Type for YAML Parsing
// ==============================================================================

// Duration wraps time.Duration for YAML unmarshaling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
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

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// ==============================================================================
// Configuration Loading
// ==============================================================================

// LoadEngineConfig loads engine configuration from a YAML file.
// Environment variables in the form ${VAR_NAME} or ${VAR_NAME:-default} are
// substituted before parsing.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := substituteEnvVars(string(data))

	var cfg EngineConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadEngineConfigWithDefaults loads config and fills in unset fields.
func LoadEngineConfigWithDefaults(path string) (*EngineConfig, error) {
	cfg, err := LoadEngineConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults sets default values for unset fields. Defaults for the
// fields an operator most commonly overrides per-deployment (rather than
// per-environment-YAML) fall back to ENGINE_* environment variables before
// the hardcoded value, mirroring the anchor service's layered config.
func (c *EngineConfig) ApplyDefaults() {
	if c.Crypto.DefaultOp == "" {
		c.Crypto.DefaultOp = getEnv("ENGINE_DEFAULT_CRYPTO_OP", "sha256")
	}

	if c.Detached.MinDigestLength == 0 {
		c.Detached.MinDigestLength = 20
	}
	if c.Detached.MaxDigestLength == 0 {
		c.Detached.MaxDigestLength = 32
	}

	if c.Calendars.RequestTimeout == 0 {
		c.Calendars.RequestTimeout = Duration(30 * time.Second)
	}
	if c.Calendars.MaxRetries == 0 {
		c.Calendars.MaxRetries = 3
	}
	if c.Calendars.RetryDelay == 0 {
		c.Calendars.RetryDelay = Duration(2 * time.Second)
	}

	if c.Metrics.Port == 0 {
		c.Metrics.Port = getEnvInt("ENGINE_METRICS_PORT", 9090)
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if !c.Metrics.Enabled {
		c.Metrics.Enabled = getEnvBool("ENGINE_METRICS_ENABLED", false)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = getEnv("ENGINE_LOG_LEVEL", "info")
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// ==============================================================================
// Environment Variable Substitution
// ==============================================================================

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}

		varName := groups[1]
		defaultValue := ""
		if len(groups) >= 4 {
			defaultValue = groups[3]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// ==============================================================================
// Configuration Validation
// ==============================================================================

var validCryptoOps = map[string]bool{
	"sha256": true, "sha1": true, "ripemd160": true, "keccak256": true,
}

// ValidateEngineConfig validates the configuration for production use.
func (c *EngineConfig) ValidateEngineConfig() error {
	var errs []string

	if !validCryptoOps[c.Crypto.DefaultOp] {
		errs = append(errs, fmt.Sprintf("crypto.default_op %q is not a recognized op", c.Crypto.DefaultOp))
	}

	if c.Detached.MinDigestLength <= 0 || c.Detached.MinDigestLength > c.Detached.MaxDigestLength {
		errs = append(errs, "detached.min_digest_length must be positive and not exceed max_digest_length")
	}
	if c.Detached.MaxDigestLength > 64 {
		errs = append(errs, "detached.max_digest_length is implausibly large for a hash digest")
	}

	for _, uri := range c.Calendars.AllowedURIs {
		if !strings.HasPrefix(uri, "https://") && !strings.HasPrefix(uri, "http://") {
			errs = append(errs, fmt.Sprintf("calendars.allowed_uris entry %q is not a URL", uri))
		}
	}
	if c.Calendars.MaxRetries < 0 {
		errs = append(errs, "calendars.max_retries must not be negative")
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		errs = append(errs, "metrics.port must be a valid TCP port when metrics are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid engine configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ==============================================================================
// Environment Helpers
// ==============================================================================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
