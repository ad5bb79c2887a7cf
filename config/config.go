// Package config provides configuration management for the diviz service and
// CLI. It supports loading configuration from YAML files and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultListenAddress = ":8080"
	DefaultOutputFormat  = OutputFormatText
	DefaultConfigDir     = ".diviz"
	DefaultConfigFile    = "config.yaml"
	DefaultLogLevel      = "info"
)

// OpenAIConfig holds the feedback model settings.
type OpenAIConfig struct {
	// APIKey authenticates against the OpenAI-compatible endpoint.
	// Usually supplied via OPENAI_API_KEY rather than the config file.
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL is the API endpoint. Defaults to the OpenAI platform URL.
	BaseURL string `yaml:"base_url,omitempty"`

	// Model is the chat model used for feedback generation.
	Model string `yaml:"model,omitempty"`

	// Temperature for feedback generation. Zero means the built-in default.
	Temperature float64 `yaml:"temperature,omitempty"`

	// MaxTokens caps the completion length. Zero means the built-in default.
	MaxTokens int64 `yaml:"max_tokens,omitempty"`

	// Timeout bounds each model request.
	Timeout time.Duration `yaml:"-"`
}

// FirefliesConfig holds the transcript source settings.
type FirefliesConfig struct {
	// APIKey authenticates against the Fireflies.ai API.
	// Usually supplied via FIREFLIES_API_KEY rather than the config file.
	APIKey string `yaml:"api_key,omitempty"`

	// Endpoint is the GraphQL endpoint URL. Empty means the production API.
	Endpoint string `yaml:"endpoint,omitempty"`

	// LookbackDays is how far back to search when resolving meeting codes.
	LookbackDays int `yaml:"lookback_days,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level,omitempty"`

	// JSON enables structured JSON output instead of console output.
	JSON bool `yaml:"json,omitempty"`
}

// Config holds the full diviz configuration.
type Config struct {
	// ListenAddress is the HTTP server bind address (host:port).
	ListenAddress string `yaml:"listen_address"`

	// ServerURL is the base URL CLI commands use to reach a running server.
	// Empty means commands run against local files only.
	ServerURL string `yaml:"server_url,omitempty"`

	// UserID identifies the caller on CLI requests to the server.
	UserID string `yaml:"user_id,omitempty"`

	// OutputFormat specifies the default output format for CLI commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// RedisAddr enables the Redis-backed meeting store when set (host:port).
	// Empty means the in-memory store.
	RedisAddr string `yaml:"redis_addr,omitempty"`

	// OpenAI holds the feedback model settings.
	OpenAI OpenAIConfig `yaml:"openai"`

	// Fireflies holds the transcript source settings.
	Fireflies FirefliesConfig `yaml:"fireflies"`

	// Log holds logging settings.
	Log LogConfig `yaml:"log"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		OutputFormat:  DefaultOutputFormat,
		Log:           LogConfig{Level: DefaultLogLevel},
	}
}

// ConfigDir returns the configuration directory path.
// Uses $DIVIZ_CONFIG_DIR if set, otherwise ~/.diviz
func ConfigDir() (string, error) {
	if dir := os.Getenv("DIVIZ_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.diviz/config.yaml or $DIVIZ_CONFIG_DIR/config.yaml)
// 3. Environment variables (DIVIZ_*, OPENAI_API_KEY, FIREFLIES_API_KEY)
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// Temp struct so the OpenAI timeout can be given as a duration string.
	type configFile struct {
		ListenAddress string          `yaml:"listen_address"`
		ServerURL     string          `yaml:"server_url"`
		UserID        string          `yaml:"user_id"`
		OutputFormat  OutputFormat    `yaml:"output_format"`
		RedisAddr     string          `yaml:"redis_addr"`
		OpenAI        OpenAIConfig    `yaml:"openai"`
		OpenAITimeout string          `yaml:"openai_timeout"`
		Fireflies     FirefliesConfig `yaml:"fireflies"`
		Log           LogConfig       `yaml:"log"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.ListenAddress != "" {
		cfg.ListenAddress = fileCfg.ListenAddress
	}
	if fileCfg.ServerURL != "" {
		cfg.ServerURL = fileCfg.ServerURL
	}
	if fileCfg.UserID != "" {
		cfg.UserID = fileCfg.UserID
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	if fileCfg.RedisAddr != "" {
		cfg.RedisAddr = fileCfg.RedisAddr
	}
	if fileCfg.OpenAI.APIKey != "" {
		cfg.OpenAI.APIKey = fileCfg.OpenAI.APIKey
	}
	if fileCfg.OpenAI.BaseURL != "" {
		cfg.OpenAI.BaseURL = fileCfg.OpenAI.BaseURL
	}
	if fileCfg.OpenAI.Model != "" {
		cfg.OpenAI.Model = fileCfg.OpenAI.Model
	}
	if fileCfg.OpenAI.Temperature != 0 {
		cfg.OpenAI.Temperature = fileCfg.OpenAI.Temperature
	}
	if fileCfg.OpenAI.MaxTokens != 0 {
		cfg.OpenAI.MaxTokens = fileCfg.OpenAI.MaxTokens
	}
	if fileCfg.OpenAITimeout != "" {
		timeout, err := time.ParseDuration(fileCfg.OpenAITimeout)
		if err != nil {
			return fmt.Errorf("parsing openai_timeout: %w", err)
		}
		cfg.OpenAI.Timeout = timeout
	}
	if fileCfg.Fireflies.APIKey != "" {
		cfg.Fireflies.APIKey = fileCfg.Fireflies.APIKey
	}
	if fileCfg.Fireflies.Endpoint != "" {
		cfg.Fireflies.Endpoint = fileCfg.Fireflies.Endpoint
	}
	if fileCfg.Fireflies.LookbackDays != 0 {
		cfg.Fireflies.LookbackDays = fileCfg.Fireflies.LookbackDays
	}
	if fileCfg.Log.Level != "" {
		cfg.Log.Level = fileCfg.Log.Level
	}
	cfg.Log.JSON = fileCfg.Log.JSON

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("DIVIZ_LISTEN_ADDRESS"); v != "" {
		cfg.ListenAddress = v
	}

	if v := os.Getenv("DIVIZ_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}

	if v := os.Getenv("DIVIZ_USER_ID"); v != "" {
		cfg.UserID = v
	}

	if v := os.Getenv("DIVIZ_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("DIVIZ_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}

	if v := os.Getenv("DIVIZ_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("DIVIZ_LOG_JSON"); v == "true" || v == "1" {
		cfg.Log.JSON = true
	}

	// Provider keys use the providers' conventional variable names so a
	// shared .env works across tools.
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}

	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}

	if v := os.Getenv("DIVIZ_OPENAI_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}

	if v := os.Getenv("DIVIZ_OPENAI_TEMPERATURE"); v != "" {
		if temp, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.OpenAI.Temperature = temp
		}
	}

	if v := os.Getenv("DIVIZ_OPENAI_MAX_TOKENS"); v != "" {
		if tokens, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.OpenAI.MaxTokens = tokens
		}
	}

	if v := os.Getenv("DIVIZ_OPENAI_TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.OpenAI.Timeout = timeout
		}
	}

	if v := os.Getenv("FIREFLIES_API_KEY"); v != "" {
		cfg.Fireflies.APIKey = v
	}

	if v := os.Getenv("DIVIZ_FIREFLIES_ENDPOINT"); v != "" {
		cfg.Fireflies.Endpoint = v
	}

	if v := os.Getenv("DIVIZ_FIREFLIES_LOOKBACK_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Fireflies.LookbackDays = days
		}
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return fmt.Errorf("listen_address is required")
	}

	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.OutputFormat)
	}

	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *Config) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}
