// Package common provides shared constants, types, and utilities
// used across the EVPN Assistant application.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "com.evpnassistant.app"
	// AppName is the display name of the application.
	AppName = "EVPN Assistant"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "evpn-assistant"
)

// File names used by the application.
const (
	ConfigFileName    = "config.yaml"
	LocationsFileName = "locations.json"
	LogFileName       = "evpn-assistant.log"
)

// DefaultBinaryPath is where the ExpressVPN client installs its CLI.
const DefaultBinaryPath = "/usr/bin/expressvpn"

// Polling bounds, in seconds.
const (
	DefaultPollingInterval = 60
	MinPollingInterval     = 10
	MaxPollingInterval     = 600
)

// Process handling.
const (
	// StdoutDrainTimeout bounds how long a finished command's stdout is
	// drained after the process has exited.
	StdoutDrainTimeout = 500 * time.Millisecond
	// MaxLineLength is the longest single output line kept from the client.
	// Longer lines are truncated.
	MaxLineLength = 64 * 1024
)

// UI constants.
const (
	// TrayIconSize is the size of the system tray icon.
	TrayIconSize = 22
	// DefaultAccentColour is used when no custom colour is configured.
	DefaultAccentColour = "#e95420"
	// SettleDebounce collapses bursts of config file writes.
	SettleDebounce = 150 * time.Millisecond
)

// Panel positions.
const (
	PanelPositionCenter = "center"
	PanelPositionRight  = "right"
	PanelPositionLeft   = "left"
)
