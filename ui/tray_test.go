package ui

import (
	"context"
	"image/color"
	"testing"

	"github.com/yllada/evpn-assistant/vpn"
)

func TestStatusTitle(t *testing.T) {
	tests := []struct {
		state vpn.ConnectionState
		want  string
	}{
		{vpn.StateConnected, "●  Connected"},
		{vpn.StatePending, "◌  Pending..."},
		{vpn.StateReconnecting, "◌  Reconnecting..."},
		{vpn.StateNotConnected, "○  Not connected"},
		{vpn.StateDisconnected, "○  Disconnected"},
		{vpn.StateUnknown, "?  Status unknown"},
	}

	for _, tt := range tests {
		if got := statusTitle(tt.state); got != tt.want {
			t.Errorf("statusTitle(%v) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestTrayIndicator_StateBeforeReady(t *testing.T) {
	tray := NewTrayIndicator(context.Background(), nil, nil, accent, nil, nil)

	// Not running: only the remembered state changes.
	tray.OnStateChanged(vpn.StateConnected)
	if tray.state != vpn.StateConnected {
		t.Errorf("state = %v, want Connected", tray.state)
	}
	if tray.locations == nil {
		t.Error("locations should default to the built-in catalogue")
	}
}

func TestTrayIndicator_IconCache(t *testing.T) {
	tray := NewTrayIndicator(context.Background(), nil, nil, accent, nil, nil)

	tray.mu.Lock()
	a := tray.iconLocked(vpn.StateConnected)
	b := tray.iconLocked(vpn.StateConnected)
	tray.iconLocked(vpn.StateNotConnected)
	tray.iconLocked(vpn.StateDisconnected)
	cached := len(tray.icons)
	tray.mu.Unlock()

	if &a[0] != &b[0] {
		t.Error("icon for the same glyph was generated twice")
	}
	if cached != 2 {
		t.Errorf("%d cached icons, want 2", cached)
	}

	tray.SetTint(color.RGBA{0, 0, 255, 255})
	tray.mu.Lock()
	cached = len(tray.icons)
	tray.mu.Unlock()
	if cached != 0 {
		t.Errorf("%d cached icons after SetTint, want 0", cached)
	}
}
