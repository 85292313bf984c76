// Package ui provides the desktop and terminal front ends of EVPN Assistant.
// This file contains the system tray indicator functionality.
package ui

import (
	"context"
	"fmt"
	"image/color"
	"sync"

	"fyne.io/systray"
	"github.com/yllada/evpn-assistant/common"
	"github.com/yllada/evpn-assistant/vpn"
)

// Actions is the set of menu actions the front ends trigger.
type Actions interface {
	PerformConnect(ctx context.Context, destination string) vpn.ConnectionState
	PerformDisconnect(ctx context.Context) vpn.ConnectionState
	Refresh(ctx context.Context) vpn.ConnectionState
}

// TrayIndicator manages the system tray icon and menu.
// It shows the connection state and offers every known location.
type TrayIndicator struct {
	ctx       context.Context
	actions   Actions
	locations *vpn.LocationMenu
	logger    common.Logger
	onQuit    func()

	mu             sync.Mutex
	ready          bool
	state          vpn.ConnectionState
	tint           color.RGBA
	icons          map[Glyph][]byte
	statusItem     *systray.MenuItem
	disconnectItem *systray.MenuItem
}

// NewTrayIndicator creates a new system tray indicator. onQuit runs when
// the user picks Quit.
func NewTrayIndicator(ctx context.Context, actions Actions, locations *vpn.LocationMenu, tint color.RGBA, logger common.Logger, onQuit func()) *TrayIndicator {
	if logger == nil {
		logger = common.NopLogger{}
	}
	if locations == nil {
		locations = vpn.DefaultLocations()
	}
	return &TrayIndicator{
		ctx:       ctx,
		actions:   actions,
		locations: locations,
		logger:    logger,
		onQuit:    onQuit,
		tint:      tint,
		icons:     make(map[Glyph][]byte),
	}
}

// Run starts the system tray indicator. It blocks until Quit.
func (t *TrayIndicator) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the indicator and makes Run return.
func (t *TrayIndicator) Quit() {
	systray.Quit()
}

// onReady is called when the systray is ready.
func (t *TrayIndicator) onReady() {
	systray.SetTitle(common.AppName)

	t.mu.Lock()
	t.statusItem = systray.AddMenuItem(statusTitle(vpn.StateUnknown), "Current VPN status")
	t.statusItem.Disable()
	t.mu.Unlock()

	systray.AddSeparator()

	t.addLocations()

	systray.AddSeparator()

	refreshItem := systray.AddMenuItem("Refresh", "Check the VPN status now")
	go func() {
		for range refreshItem.ClickedCh {
			go t.actions.Refresh(t.ctx)
		}
	}()

	disconnectItem := systray.AddMenuItem("Disconnect", "Disconnect from VPN")
	go func() {
		for range disconnectItem.ClickedCh {
			go t.actions.PerformDisconnect(t.ctx)
		}
	}()

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Close "+common.AppName)
	go func() {
		for range quitItem.ClickedCh {
			if t.onQuit != nil {
				t.onQuit()
			}
			systray.Quit()
		}
	}()

	t.mu.Lock()
	t.disconnectItem = disconnectItem
	t.ready = true
	t.applyLocked()
	t.mu.Unlock()
}

// onExit is called when the systray is about to exit.
func (t *TrayIndicator) onExit() {
	t.mu.Lock()
	t.ready = false
	t.mu.Unlock()
	t.logger.Info("Tray indicator cleanup completed")
}

// addLocations adds one submenu per location group.
func (t *TrayIndicator) addLocations() {
	for _, g := range t.locations.Groups {
		switch {
		case g.IsSeparator():
			systray.AddSeparator()
		case g.IsTopLevel():
			loc := g.Items[0]
			t.bindLocation(systray.AddMenuItem(loc.Label, "Connect to "+loc.Label), loc)
		default:
			group := systray.AddMenuItem(g.Label, "")
			for _, loc := range g.Items {
				t.bindLocation(group.AddSubMenuItem(loc.Label, "Connect to "+loc.Label), loc)
			}
		}
	}
}

func (t *TrayIndicator) bindLocation(item *systray.MenuItem, loc vpn.Location) {
	go func() {
		for range item.ClickedCh {
			t.logger.Info("Tray: connect to %s (%s)", loc.Label, loc.Code)
			go t.actions.PerformConnect(t.ctx, loc.Code)
		}
	}()
}

// OnStateChanged updates the icon, tooltip and status row.
func (t *TrayIndicator) OnStateChanged(state vpn.ConnectionState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
	if t.ready {
		t.applyLocked()
	}
}

// SetTint changes the icon colour.
func (t *TrayIndicator) SetTint(tint color.RGBA) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tint == t.tint {
		return
	}
	t.tint = tint
	t.icons = make(map[Glyph][]byte)
	if t.ready {
		t.applyLocked()
	}
}

func (t *TrayIndicator) applyLocked() {
	systray.SetIcon(t.iconLocked(t.state))
	systray.SetTooltip(fmt.Sprintf("%s - %s", common.AppName, t.state))

	if t.statusItem != nil {
		t.statusItem.SetTitle(statusTitle(t.state))
	}
	if t.disconnectItem != nil {
		if t.state == vpn.StateConnected || t.state.IsTransitional() {
			t.disconnectItem.Enable()
		} else {
			t.disconnectItem.Disable()
		}
	}
}

func (t *TrayIndicator) iconLocked(state vpn.ConnectionState) []byte {
	cfg := IconConfigForState(state, t.tint)
	if icon, ok := t.icons[cfg.Glyph]; ok {
		return icon
	}
	icon := NewIconGenerator(cfg).Generate()
	t.icons[cfg.Glyph] = icon
	return icon
}

// statusTitle is the text of the status row.
func statusTitle(state vpn.ConnectionState) string {
	switch {
	case state == vpn.StateConnected:
		return "●  Connected"
	case state.IsTransitional():
		return "◌  " + state.String() + "..."
	case state == vpn.StateUnknown:
		return "?  Status unknown"
	default:
		return "○  " + state.String()
	}
}
