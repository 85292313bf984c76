// Package ui provides the desktop and terminal front ends of EVPN Assistant.
//
// This package implements:
//
//   - System tray indicator with a status row and location submenus
//   - Terminal dashboard (--tui) built on bubbletea
//   - Desktop notifications over D-Bus, with notify-send as a fallback
//   - Runtime generated tray icons tinted with the configured colour
//
// # Architecture
//
//   - Application: owns the VPN client stack and the settings watcher, and
//     fans every published ConnectionState out to the front ends
//   - TrayIndicator: systray integration for background operation
//   - Dashboard: bubbletea model listing locations with the live state
//   - DesktopNotifier: common.Notifier for connection changes
//
// # Thread Safety
//
// Menu clicks and dashboard keys run VPN actions on their own goroutines;
// results come back through Application.OnStateChanged, which may be
// called from any goroutine.
//
// # File Organization
//
//   - app.go: Application wiring and settings reload
//   - tray.go: System tray indicator
//   - tui.go: Terminal dashboard
//   - icons.go: Icon generation for tray
//   - styles.go: Terminal colours
//   - notifications.go: Desktop notification integration
package ui
