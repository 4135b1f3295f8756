package config

import (
	"os"
	"strings"
)

// SettingSource represents where a setting value comes from.
type SettingSource string

const (
	SourceEnv    SettingSource = "env"
	SourceConfig SettingSource = "config"
	SourceNone   SettingSource = "none"
)

// SettingStatus represents the status of an endpoint setting.
type SettingStatus struct {
	Name   string        `json:"name"`
	Key    string        `json:"key"`
	Source SettingSource `json:"source"`
	IsSet  bool          `json:"is_set"`
	Value  string        `json:"value,omitempty"`
}

// CheckSettings returns the status of the endpoint settings the transports
// depend on.
func CheckSettings(cfg *Config) []SettingStatus {
	return []SettingStatus{
		checkSetting("SEC base URL", "sec.base_url", cfg.SEC.BaseURL),
		checkSetting("SEC User-Agent", "sec.user_agent", cfg.SEC.UserAgent),
		checkSetting("Transport mode", "transport.mode", cfg.Transport.Mode),
		checkSetting("Fallback directory", "transport.fallback_dir", cfg.Transport.FallbackDir),
		checkSetting("CORS proxy URL", "transport.proxy_url", cfg.Transport.ProxyURL),
		checkSetting("Relay URL", "transport.relay_url", cfg.Transport.RelayURL),
	}
}

// EnvVar returns the environment variable that overrides key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// checkSetting checks if a setting is set and where it came from.
func checkSetting(name, key, value string) SettingStatus {
	status := SettingStatus{
		Name:  name,
		Key:   key,
		IsSet: value != "",
		Value: value,
	}

	switch {
	case value == "":
		status.Source = SourceNone
	case os.Getenv(EnvVar(key)) != "":
		status.Source = SourceEnv
	default:
		status.Source = SourceConfig
	}

	return status
}
