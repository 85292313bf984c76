// Package common provides shared constants, types, and utilities
// used across the EVPN Assistant application.
package common

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns a short random identifier used to correlate the log
// lines of a single client invocation.
func GenerateID() string {
	return uuid.NewString()[:8]
}

// GetConfigDir returns the path to the application configuration directory.
// It creates the directory if it doesn't exist.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", WrapError(err, "failed to get home directory")
	}

	configDir := filepath.Join(homeDir, ".config", ConfigDirName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", WrapError(err, "failed to create config directory")
	}

	return configDir, nil
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ParseRGB parses the "rgb(r,g,b)" notation used by the settings file.
func ParseRGB(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "rgb(") || !strings.HasSuffix(s, ")") {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidRGB, s)
	}

	parts := strings.Split(s[len("rgb("):len(s)-1], ",")
	if len(parts) != 3 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidRGB, s)
	}

	var rgb [3]uint8
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 || v > 255 {
			return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidRGB, s)
		}
		rgb[i] = uint8(v)
	}

	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, nil
}

// RGBToHex formats a colour as #rrggbb.
func RGBToHex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HexOrDefault converts an "rgb(r,g,b)" setting to #rrggbb, falling back to
// DefaultAccentColour when the setting is malformed.
func HexOrDefault(rgb string) string {
	c, err := ParseRGB(rgb)
	if err != nil {
		return DefaultAccentColour
	}
	return RGBToHex(c)
}
