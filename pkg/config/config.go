// Package config provides configuration loading for the sync service.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultAdminEmail is the fixed identity provisioned in local mode.
const DefaultAdminEmail = "admin@flowbridge.local"

// Config is the service configuration loaded from a YAML file. Flags and
// environment variables on the individual commands override these values.
type Config struct {
	LocalMode     bool   `yaml:"local_mode"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`

	Bridge  BridgeConfig  `yaml:"bridge"`
	Watcher WatcherConfig `yaml:"watcher"`
}

// BridgeConfig configures the host bridge message channel.
type BridgeConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Channel    string `yaml:"channel"` // gochannel or kafka
	DebounceMS int    `yaml:"debounce_ms"`
}

// WatcherConfig configures the workflow file watcher.
type WatcherConfig struct {
	Path           string `yaml:"path"`
	DebounceMS     int    `yaml:"debounce_ms"`
	ResyncSchedule string `yaml:"resync_schedule"` // cron expression for the periodic full resync
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		AdminEmail: DefaultAdminEmail,
		Bridge: BridgeConfig{
			Channel:    "gochannel",
			DebounceMS: 500,
		},
		Watcher: WatcherConfig{
			DebounceMS:     300,
			ResyncSchedule: "@every 5m",
		},
	}
}

// Load reads the configuration from a YAML file, filling unset fields with
// defaults.
func Load(filepath string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(filepath)
	if err != nil {
		return config, fmt.Errorf("failed to read config file %s: %w", filepath, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if config.AdminEmail == "" {
		config.AdminEmail = DefaultAdminEmail
	}

	if config.Bridge.Channel == "" {
		config.Bridge.Channel = "gochannel"
	}

	if config.Watcher.ResyncSchedule == "" {
		config.Watcher.ResyncSchedule = "@every 5m"
	}

	return config, nil
}
