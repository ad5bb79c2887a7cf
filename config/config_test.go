// Package config provides configuration management for the diviz service and
// CLI.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies default configuration values.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if cfg.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %v, want %v", cfg.ListenAddress, DefaultListenAddress)
	}
	if cfg.OutputFormat != DefaultOutputFormat {
		t.Errorf("OutputFormat = %v, want %v", cfg.OutputFormat, DefaultOutputFormat)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %v, want %v", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %v, want empty", cfg.RedisAddr)
	}
}

// TestOutputFormat_IsValid verifies output format validation.
func TestOutputFormat_IsValid(t *testing.T) {
	tests := []struct {
		format OutputFormat
		valid  bool
	}{
		{OutputFormatText, true},
		{OutputFormatJSON, true},
		{OutputFormatYAML, true},
		{OutputFormat("xml"), false},
		{OutputFormat(""), false},
	}

	for _, tt := range tests {
		if got := tt.format.IsValid(); got != tt.valid {
			t.Errorf("OutputFormat(%q).IsValid() = %v, want %v", tt.format, got, tt.valid)
		}
	}
}

// TestConfigDir_EnvOverride verifies DIVIZ_CONFIG_DIR takes precedence.
func TestConfigDir_EnvOverride(t *testing.T) {
	t.Setenv("DIVIZ_CONFIG_DIR", "/tmp/diviz-test-config")

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if dir != "/tmp/diviz-test-config" {
		t.Errorf("ConfigDir() = %v, want /tmp/diviz-test-config", dir)
	}
}

// TestLoadConfig_FromFile verifies YAML file loading.
func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DIVIZ_CONFIG_DIR", dir)

	content := `listen_address: ":9090"
output_format: json
redis_addr: "localhost:6379"
openai:
  model: gpt-4o
  temperature: 0.7
openai_timeout: 90s
fireflies:
  lookback_days: 14
log:
  level: debug
  json: true
`
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.ListenAddress != ":9090" {
		t.Errorf("ListenAddress = %v, want :9090", cfg.ListenAddress)
	}
	if cfg.OutputFormat != OutputFormatJSON {
		t.Errorf("OutputFormat = %v, want json", cfg.OutputFormat)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %v, want localhost:6379", cfg.RedisAddr)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("OpenAI.Model = %v, want gpt-4o", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Temperature != 0.7 {
		t.Errorf("OpenAI.Temperature = %v, want 0.7", cfg.OpenAI.Temperature)
	}
	if cfg.OpenAI.Timeout != 90*time.Second {
		t.Errorf("OpenAI.Timeout = %v, want 90s", cfg.OpenAI.Timeout)
	}
	if cfg.Fireflies.LookbackDays != 14 {
		t.Errorf("Fireflies.LookbackDays = %v, want 14", cfg.Fireflies.LookbackDays)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %v, want debug", cfg.Log.Level)
	}
	if !cfg.Log.JSON {
		t.Error("Log.JSON should be true")
	}
}

// TestLoadConfig_EnvOverridesFile verifies environment precedence.
func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DIVIZ_CONFIG_DIR", dir)

	content := "listen_address: \":9090\"\n"
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	t.Setenv("DIVIZ_LISTEN_ADDRESS", ":7070")
	t.Setenv("OPENAI_API_KEY", "sk-env-key")
	t.Setenv("FIREFLIES_API_KEY", "ff-env-key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.ListenAddress != ":7070" {
		t.Errorf("ListenAddress = %v, want :7070", cfg.ListenAddress)
	}
	if cfg.OpenAI.APIKey != "sk-env-key" {
		t.Errorf("OpenAI.APIKey = %v, want sk-env-key", cfg.OpenAI.APIKey)
	}
	if cfg.Fireflies.APIKey != "ff-env-key" {
		t.Errorf("Fireflies.APIKey = %v, want ff-env-key", cfg.Fireflies.APIKey)
	}
}

// TestLoadConfig_NoFileUsesDefaults verifies defaults when no file exists.
func TestLoadConfig_NoFileUsesDefaults(t *testing.T) {
	t.Setenv("DIVIZ_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %v, want %v", cfg.ListenAddress, DefaultListenAddress)
	}
}

// TestValidate verifies configuration validation.
func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got %v", err)
	}

	cfg.ListenAddress = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty listen_address should be invalid")
	}

	cfg = DefaultConfig()
	cfg.OutputFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("invalid output_format should be rejected")
	}
}

// TestSaveConfig verifies round-tripping through SaveConfig/LoadConfig.
func TestSaveConfig(t *testing.T) {
	t.Setenv("DIVIZ_CONFIG_DIR", t.TempDir())

	cfg := DefaultConfig()
	cfg.ListenAddress = ":9191"
	cfg.OpenAI.Model = "gpt-4o"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.ListenAddress != ":9191" {
		t.Errorf("ListenAddress = %v, want :9191", loaded.ListenAddress)
	}
	if loaded.OpenAI.Model != "gpt-4o" {
		t.Errorf("OpenAI.Model = %v, want gpt-4o", loaded.OpenAI.Model)
	}
}
