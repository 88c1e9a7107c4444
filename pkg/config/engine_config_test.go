// Copyright 2025 Certen Protocol

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadEngineConfig_EnvVarSubstitution(t *testing.T) {
	t.Setenv("ENGINE_METRICS_PORT", "9191")
	path := writeTempConfig(t, `
environment: staging
metrics:
  enabled: true
  port: ${ENGINE_METRICS_PORT}
`)
	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}
	if cfg.Metrics.Port != 9191 {
		t.Errorf("Metrics.Port = %d, want 9191", cfg.Metrics.Port)
	}
}

func TestLoadEngineConfig_DefaultSubstitution(t *testing.T) {
	path := writeTempConfig(t, `
crypto:
  default_op: ${ENGINE_DEFAULT_OP:-sha256}
`)
	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}
	if cfg.Crypto.DefaultOp != "sha256" {
		t.Errorf("Crypto.DefaultOp = %q, want sha256", cfg.Crypto.DefaultOp)
	}
}

func TestLoadEngineConfigWithDefaults_FillsUnsetFields(t *testing.T) {
	path := writeTempConfig(t, `environment: dev`)
	cfg, err := LoadEngineConfigWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadEngineConfigWithDefaults: %v", err)
	}
	if cfg.Crypto.DefaultOp != "sha256" {
		t.Errorf("expected default crypto op sha256, got %q", cfg.Crypto.DefaultOp)
	}
	if cfg.Detached.MinDigestLength != 20 || cfg.Detached.MaxDigestLength != 32 {
		t.Errorf("expected default digest bounds 20/32, got %d/%d", cfg.Detached.MinDigestLength, cfg.Detached.MaxDigestLength)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("expected default metrics path /metrics, got %q", cfg.Metrics.Path)
	}
}

func TestValidateEngineConfig_RejectsUnknownCryptoOp(t *testing.T) {
	cfg := &EngineConfig{Crypto: CryptoSettings{DefaultOp: "md5"}, Detached: DetachedSettings{MinDigestLength: 20, MaxDigestLength: 32}}
	if err := cfg.ValidateEngineConfig(); err == nil {
		t.Fatal("expected an error for an unrecognized crypto op")
	}
}

func TestValidateEngineConfig_RejectsBadDigestBounds(t *testing.T) {
	cfg := &EngineConfig{Crypto: CryptoSettings{DefaultOp: "sha256"}, Detached: DetachedSettings{MinDigestLength: 40, MaxDigestLength: 32}}
	if err := cfg.ValidateEngineConfig(); err == nil {
		t.Fatal("expected an error when min exceeds max")
	}
}

func TestValidateEngineConfig_RejectsNonURLCalendar(t *testing.T) {
	cfg := &EngineConfig{
		Crypto:    CryptoSettings{DefaultOp: "sha256"},
		Detached:  DetachedSettings{MinDigestLength: 20, MaxDigestLength: 32},
		Calendars: CalendarSettings{AllowedURIs: []string{"not-a-url"}},
	}
	if err := cfg.ValidateEngineConfig(); err == nil {
		t.Fatal("expected an error for a non-URL calendar entry")
	}
}

func TestValidateEngineConfig_AcceptsSaneDefaults(t *testing.T) {
	cfg := &EngineConfig{}
	cfg.ApplyDefaults()
	if err := cfg.ValidateEngineConfig(); err != nil {
		t.Errorf("defaulted config should validate cleanly: %v", err)
	}
}

func TestApplyDefaults_ReadsEngineEnvironmentVariables(t *testing.T) {
	t.Setenv("ENGINE_DEFAULT_CRYPTO_OP", "keccak256")
	t.Setenv("ENGINE_METRICS_PORT", "9292")
	t.Setenv("ENGINE_METRICS_ENABLED", "true")
	t.Setenv("ENGINE_LOG_LEVEL", "debug")

	cfg := &EngineConfig{}
	cfg.ApplyDefaults()

	if cfg.Crypto.DefaultOp != "keccak256" {
		t.Errorf("Crypto.DefaultOp = %q, want keccak256", cfg.Crypto.DefaultOp)
	}
	if cfg.Metrics.Port != 9292 {
		t.Errorf("Metrics.Port = %d, want 9292", cfg.Metrics.Port)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be true from ENGINE_METRICS_ENABLED")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestApplyDefaults_FallsBackWithoutEnvironmentVariables(t *testing.T) {
	cfg := &EngineConfig{}
	cfg.ApplyDefaults()

	if cfg.Crypto.DefaultOp != "sha256" {
		t.Errorf("Crypto.DefaultOp = %q, want sha256", cfg.Crypto.DefaultOp)
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Metrics.Port = %d, want 9090", cfg.Metrics.Port)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to false")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}
