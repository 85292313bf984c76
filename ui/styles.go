// Package ui provides the desktop and terminal front ends of EVPN Assistant.
// This file contains the terminal colours and styles.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/yllada/evpn-assistant/common"
	"github.com/yllada/evpn-assistant/vpn"
)

// Palette, shared with the tray icons.
var (
	colorConnected = lipgloss.Color("#2ec27e")
	colorPending   = lipgloss.Color("#e5a50a")
	colorError     = lipgloss.Color("#e01b24")
	colorIdle      = lipgloss.Color("#9e9e9e")
	colorMuted     = lipgloss.Color("#757575")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	statusBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
)

// StateStyle returns the style a state is rendered with.
func StateStyle(state vpn.ConnectionState) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch {
	case state == vpn.StateConnected:
		return s.Foreground(colorConnected)
	case state.IsTransitional():
		return s.Foreground(colorPending)
	case state == vpn.StateUnknown:
		return s.Foreground(colorError)
	default:
		return s.Foreground(colorIdle)
	}
}

// RenderState renders a state's name in its colour.
func RenderState(state vpn.ConnectionState) string {
	return StateStyle(state).Render(state.String())
}

// AccentStyle returns a style coloured with an "rgb(r,g,b)" setting.
func AccentStyle(rgb string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(common.HexOrDefault(rgb)))
}
