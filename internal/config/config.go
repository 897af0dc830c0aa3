// Package config loads the memoryreel service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the memoryreel API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Health   HealthConfig   `yaml:"health"`
	Search   SearchConfig   `yaml:"search"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// AnalysisConfig holds provider and failover settings.
// Provider list order defines registration order and failover tie-break priority.
type AnalysisConfig struct {
	ConfidenceThreshold float64          `yaml:"confidence_threshold"`
	AttemptTimeoutSec   int              `yaml:"attempt_timeout_sec"`
	Providers           []ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds one analysis provider's settings.
type ProviderConfig struct {
	Kind         string   `yaml:"kind"`
	APIKey       string   `yaml:"api_key"`
	BaseURL      string   `yaml:"base_url"`
	Model        string   `yaml:"model"`
	Capabilities []string `yaml:"capabilities"`
}

// HealthConfig holds health monitor settings.
type HealthConfig struct {
	IntervalSec     int `yaml:"interval_sec"`
	ProbeTimeoutSec int `yaml:"probe_timeout_sec"`
}

// SearchConfig holds search coordinator settings.
type SearchConfig struct {
	DeadlineSec     int    `yaml:"deadline_sec"`
	DefaultPageSize int    `yaml:"default_page_size"`
	MaxPageSize     int    `yaml:"max_page_size"`
	CacheTTLSec     int    `yaml:"cache_ttl_sec"`
	IndexName       string `yaml:"index_name"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 35
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "mrl:"
	}
	if c.Analysis.ConfidenceThreshold <= 0 {
		c.Analysis.ConfidenceThreshold = 0.7
	}
	if c.Analysis.AttemptTimeoutSec <= 0 {
		c.Analysis.AttemptTimeoutSec = 10
	}
	if c.Health.IntervalSec <= 0 {
		c.Health.IntervalSec = 30
	}
	if c.Health.ProbeTimeoutSec <= 0 {
		c.Health.ProbeTimeoutSec = 5
	}
	if c.Search.DeadlineSec <= 0 {
		c.Search.DeadlineSec = 30
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 20
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Search.CacheTTLSec <= 0 {
		c.Search.CacheTTLSec = 300
	}
	if c.Search.IndexName == "" {
		c.Search.IndexName = "mrl:content:idx"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if len(c.Analysis.Providers) == 0 {
		return fmt.Errorf("analysis.providers is required")
	}
	if c.Analysis.ConfidenceThreshold > 1 {
		return fmt.Errorf("analysis.confidence_threshold must be in (0, 1], got %v",
			c.Analysis.ConfidenceThreshold)
	}
	seen := make(map[string]struct{}, len(c.Analysis.Providers))
	for i, p := range c.Analysis.Providers {
		if p.Kind == "" {
			return fmt.Errorf("analysis.providers[%d].kind is required", i)
		}
		if _, dup := seen[p.Kind]; dup {
			return fmt.Errorf("analysis.providers: duplicate kind %q", p.Kind)
		}
		seen[p.Kind] = struct{}{}
		if p.Model == "" {
			return fmt.Errorf("analysis.providers[%d].model is required", i)
		}
		if len(p.Capabilities) == 0 {
			return fmt.Errorf("analysis.providers[%d].capabilities is required", i)
		}
	}
	if c.Search.MaxPageSize < c.Search.DefaultPageSize {
		return fmt.Errorf("search.max_page_size must be >= search.default_page_size")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
