// Package config provides configuration management for EVPN Assistant.
// It handles loading, saving, and watching the application settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yllada/evpn-assistant/common"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	// BinaryPath is the ExpressVPN command line client.
	BinaryPath string `yaml:"binary_path"`
	// PollingInterval is the delay between status checks, in seconds.
	PollingInterval int `yaml:"polling_interval"`
	// PollingEnabled turns periodic status checks on.
	PollingEnabled bool `yaml:"polling_enabled"`
	// LoggingEnabled switches the log level to DEBUG.
	LoggingEnabled bool `yaml:"logging_enabled"`
	// PanelPosition is "center", "right" or "left".
	PanelPosition string `yaml:"panel_position"`
	// GroupIconColour tints the tray icons, as "rgb(r,g,b)".
	GroupIconColour string `yaml:"group_icon_colour"`
	// MenuLabelColour is the accent used for location labels, as "rgb(r,g,b)".
	MenuLabelColour string `yaml:"menu_label_colour"`
	// LocationsFile overrides the built-in location catalogue.
	LocationsFile string `yaml:"locations_file"`
	// ShowNotifications enables desktop notifications for connection events.
	ShowNotifications bool `yaml:"show_notifications"`
}

const defaultColour = "rgb(233,84,32)"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BinaryPath:        common.DefaultBinaryPath,
		PollingInterval:   common.DefaultPollingInterval,
		PollingEnabled:    true,
		LoggingEnabled:    false,
		PanelPosition:     common.PanelPositionCenter,
		GroupIconColour:   defaultColour,
		MenuLabelColour:   defaultColour,
		LocationsFile:     "",
		ShowNotifications: true,
	}
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := common.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, common.ConfigFileName), nil
}

// Load loads the configuration from the default config file.
// If the file doesn't exist, it creates one with default values.
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, common.WrapError(common.ErrConfigLoad, err.Error())
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from path, creating it with default
// values when it doesn't exist.
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.SaveTo(configPath); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: error opening configuration: %v", common.ErrConfigLoad, err)
	}
	defer file.Close()

	// Missing keys keep their defaults.
	config := DefaultConfig()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("%w: error parsing configuration: %v", common.ErrConfigLoad, err)
	}

	config.validate()

	return config, nil
}

// validate replaces out of range values with usable ones.
func (c *Config) validate() {
	if c.BinaryPath == "" {
		c.BinaryPath = common.DefaultBinaryPath
	}

	if c.PollingInterval < common.MinPollingInterval {
		c.PollingInterval = common.MinPollingInterval
	}
	if c.PollingInterval > common.MaxPollingInterval {
		c.PollingInterval = common.MaxPollingInterval
	}

	switch c.PanelPosition {
	case common.PanelPositionCenter, common.PanelPositionRight, common.PanelPositionLeft:
	default:
		c.PanelPosition = common.PanelPositionCenter // Fallback to default
	}

	if _, err := common.ParseRGB(c.GroupIconColour); err != nil {
		c.GroupIconColour = defaultColour
	}
	if _, err := common.ParseRGB(c.MenuLabelColour); err != nil {
		c.MenuLabelColour = defaultColour
	}
}

// Save saves the configuration to the default file.
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return common.WrapError(common.ErrConfigSave, err.Error())
	}
	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to path.
func (c *Config) SaveTo(configPath string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("%w: error creating config directory: %v", common.ErrConfigSave, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: error serializing configuration: %v", common.ErrConfigSave, err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("%w: error saving configuration: %v", common.ErrConfigSave, err)
	}

	return nil
}

// Interval returns the polling interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.PollingInterval) * time.Second
}

// LogLevel maps the logging toggle to a log level.
func (c *Config) LogLevel() common.LogLevel {
	if c.LoggingEnabled {
		return common.LevelDebug
	}
	return common.LevelInfo
}
