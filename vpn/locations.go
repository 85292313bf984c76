// Package vpn provides the connection logic of EVPN Assistant.
// This file contains the location catalogue that feeds the destination
// menus.
package vpn

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/yllada/evpn-assistant/common"
)

//go:embed locations.json
var defaultLocations []byte

// Location is one selectable destination.
type Location struct {
	// Label is shown in menus.
	Label string `json:"itemLabel"`
	// IconPath is an optional flag image, relative to the catalogue.
	IconPath string `json:"itemIconPath"`
	// Code is passed verbatim to the client's connect command.
	Code string `json:"itemVpnCode"`
}

// LocationGroup is a submenu of locations. A group with an empty label is a
// single top level entry, and a group whose label contains "seperator" is
// a menu separator.
type LocationGroup struct {
	Label    string     `json:"groupLabel"`
	IconPath string     `json:"groupIconPath"`
	Items    []Location `json:"items"`
}

// IsSeparator reports whether the group only draws a separator line.
// Both the historical "seperator" spelling and "separator" are accepted.
func (g LocationGroup) IsSeparator() bool {
	label := strings.ToLower(g.Label)
	return strings.Contains(label, "seperator") || strings.Contains(label, "separator")
}

// IsTopLevel reports whether the group's first item belongs directly in
// the root menu.
func (g LocationGroup) IsTopLevel() bool {
	return strings.TrimSpace(g.Label) == "" && len(g.Items) > 0
}

// LocationMenu is the whole catalogue in menu order.
type LocationMenu struct {
	Groups []LocationGroup `json:"menuitems"`
}

// DefaultLocations returns the catalogue built into the binary.
func DefaultLocations() *LocationMenu {
	menu, err := ParseLocations(defaultLocations)
	if err != nil {
		// The embedded file is part of the build.
		panic(fmt.Sprintf("vpn: embedded locations: %v", err))
	}
	return menu
}

// LoadLocations reads a catalogue file. An empty path yields the built-in
// catalogue.
func LoadLocations(path string) (*LocationMenu, error) {
	if path == "" {
		return DefaultLocations(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(common.ErrInvalidLocations, fmt.Sprintf("failed to read %s: %v", path, err))
	}

	menu, err := ParseLocations(data)
	if err != nil {
		return nil, err
	}
	return menu, nil
}

// ParseLocations decodes and validates a catalogue document.
func ParseLocations(data []byte) (*LocationMenu, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var menu LocationMenu
	if err := dec.Decode(&menu); err != nil {
		return nil, common.WrapError(common.ErrInvalidLocations, err.Error())
	}
	if len(menu.Groups) == 0 {
		return nil, common.WrapError(common.ErrInvalidLocations, "no menuitems")
	}

	for i, g := range menu.Groups {
		if g.IsSeparator() {
			continue
		}
		if len(g.Items) == 0 {
			return nil, common.WrapError(common.ErrInvalidLocations, fmt.Sprintf("group %d (%q) has no items", i, g.Label))
		}
		for _, item := range g.Items {
			if strings.TrimSpace(item.Label) == "" {
				return nil, common.WrapError(common.ErrInvalidLocations, fmt.Sprintf("group %d (%q) has an item without a label", i, g.Label))
			}
		}
	}

	return &menu, nil
}

// All returns every location in menu order. Top level groups contribute
// their first item only, as that is all the menu shows for them.
func (m *LocationMenu) All() []Location {
	var out []Location
	for _, g := range m.Groups {
		switch {
		case g.IsSeparator():
		case g.IsTopLevel():
			out = append(out, g.Items[0])
		default:
			out = append(out, g.Items...)
		}
	}
	return out
}

// Find looks a location up by code or label, ignoring case.
func (m *LocationMenu) Find(query string) (Location, error) {
	q := strings.TrimSpace(query)
	for _, loc := range m.All() {
		if strings.EqualFold(loc.Code, q) || strings.EqualFold(loc.Label, q) {
			return loc, nil
		}
	}
	return Location{}, common.WrapError(common.ErrLocationNotFound, query)
}
