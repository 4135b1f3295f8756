// Package config handles configuration loading for sharesrange.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SHARESRANGE_SEC_CUTOFF_YEAR.
const EnvPrefix = "SHARESRANGE"

// RetriesUnset marks retry.max_retries as not configured; the transport mode
// then picks the default.
const RetriesUnset = -1

// Config represents the complete application configuration.
type Config struct {
	SEC       SECConfig       `mapstructure:"sec"       yaml:"sec"`
	Transport TransportConfig `mapstructure:"transport" yaml:"transport"`
	Retry     RetryConfig     `mapstructure:"retry"     yaml:"retry"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// SECConfig holds EDGAR access and extraction settings.
type SECConfig struct {
	BaseURL    string `mapstructure:"base_url"    yaml:"base_url"`
	UserAgent  string `mapstructure:"user_agent"  yaml:"user_agent"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"` // per attempt
	RateLimit  int    `mapstructure:"rate_limit"  yaml:"rate_limit"`  // requests per second
	DefaultCIK string `mapstructure:"default_cik" yaml:"default_cik"`
	CutoffYear int    `mapstructure:"cutoff_year" yaml:"cutoff_year"`
}

// TransportConfig selects how EDGAR is reached.
type TransportConfig struct {
	Mode        string `mapstructure:"mode"         yaml:"mode"` // "direct", "fallback", "proxy", "relay"
	FallbackDir string `mapstructure:"fallback_dir" yaml:"fallback_dir"`
	ProxyURL    string `mapstructure:"proxy_url"    yaml:"proxy_url"`
	RelayURL    string `mapstructure:"relay_url"    yaml:"relay_url"`
}

// RetryConfig holds the retry policy settings.
type RetryConfig struct {
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"` // -1 = mode default
	BackoffMS  int `mapstructure:"backoff_ms"  yaml:"backoff_ms"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.sharesrange/config.yaml (home directory)
//  3. /etc/sharesrange/config.yaml (system)
//
// Environment variables override config file values.
// Format: SHARESRANGE_<SECTION>_<KEY>, e.g., SHARESRANGE_TRANSPORT_RELAY_URL
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".sharesrange"))
	v.AddConfigPath("/etc/sharesrange")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// SEC defaults
	v.SetDefault("sec.base_url", "https://data.sec.gov")
	v.SetDefault("sec.user_agent", "sharesrange/1.0 (github.com/seenimoa/sharesrange)")
	v.SetDefault("sec.timeout_sec", 15)
	v.SetDefault("sec.rate_limit", 10) // SEC fair-access limit
	v.SetDefault("sec.default_cik", "2969")
	v.SetDefault("sec.cutoff_year", 2020)

	// Transport defaults
	v.SetDefault("transport.mode", "direct")
	v.SetDefault("transport.fallback_dir", "./data")
	v.SetDefault("transport.proxy_url", "https://api.allorigins.win/raw?url=")
	v.SetDefault("transport.relay_url", "")

	// Retry defaults
	v.SetDefault("retry.max_retries", RetriesUnset)
	v.SetDefault("retry.backoff_ms", 500)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// Timeout returns the per-attempt request timeout.
func (c SECConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Backoff returns the linear backoff step.
func (c RetryConfig) Backoff() time.Duration {
	return time.Duration(c.BackoffMS) * time.Millisecond
}
