package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yllada/evpn-assistant/vpn"
)

// fakeActions returns fixed states and records destinations.
type fakeActions struct {
	connect      vpn.ConnectionState
	disconnect   vpn.ConnectionState
	status       vpn.ConnectionState
	destinations []string
}

func (f *fakeActions) PerformConnect(ctx context.Context, destination string) vpn.ConnectionState {
	f.destinations = append(f.destinations, destination)
	return f.connect
}

func (f *fakeActions) PerformDisconnect(ctx context.Context) vpn.ConnectionState {
	return f.disconnect
}

func (f *fakeActions) Refresh(ctx context.Context) vpn.ConnectionState {
	return f.status
}

func TestCLI_Status(t *testing.T) {
	tests := []struct {
		state   vpn.ConnectionState
		want    string
		wantErr bool
	}{
		{vpn.StateConnected, "VPN status: Connected\n", false},
		{vpn.StateNotConnected, "VPN status: Not connected\n", false},
		{vpn.StateUnknown, "VPN status: Unknown\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			var out bytes.Buffer
			c := New(&fakeActions{status: tt.state}, nil, &out)

			err := c.Status(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Status() error = %v, wantErr %v", err, tt.wantErr)
			}
			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestCLI_ConnectResolvesLocation(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"usny", "usny"},
		{"UK - London", "uklo"},
		{"xx-custom", "xx-custom"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			actions := &fakeActions{connect: vpn.StateConnected}
			var out bytes.Buffer
			c := New(actions, nil, &out)

			if err := c.Connect(context.Background(), tt.query); err != nil {
				t.Fatalf("Connect() error = %v", err)
			}
			if diff := cmp.Diff([]string{tt.want}, actions.destinations); diff != "" {
				t.Errorf("destinations mismatch (-want +got):\n%s", diff)
			}
			if !strings.Contains(out.String(), "✓ Connected") {
				t.Errorf("output = %q, want a success line", out.String())
			}
		})
	}
}

func TestCLI_ConnectFailure(t *testing.T) {
	var out bytes.Buffer
	c := New(&fakeActions{connect: vpn.StatePending}, nil, &out)

	err := c.Connect(context.Background(), "usny")
	if !errors.Is(err, ErrUnexpectedState) {
		t.Errorf("Connect() error = %v, want ErrUnexpectedState", err)
	}
}

func TestCLI_Disconnect(t *testing.T) {
	tests := []struct {
		state   vpn.ConnectionState
		wantErr bool
	}{
		{vpn.StateNotConnected, false},
		{vpn.StateDisconnected, false},
		{vpn.StateUnknown, false},
		{vpn.StateConnected, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			var out bytes.Buffer
			c := New(&fakeActions{disconnect: tt.state}, nil, &out)

			err := c.Disconnect(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Disconnect() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCLI_ListLocations(t *testing.T) {
	menu, err := vpn.ParseLocations([]byte(`{"menuitems":[
		{"groupLabel":"","groupIconPath":"","items":[{"itemLabel":"Smart Location","itemIconPath":"","itemVpnCode":"smart"}]},
		{"groupLabel":"seperator","groupIconPath":"","items":[]},
		{"groupLabel":"Europe","groupIconPath":"","items":[{"itemLabel":"UK - London","itemIconPath":"","itemVpnCode":"uklo"}]}]}`))
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	c := New(&fakeActions{}, menu, &out)
	if err := c.ListLocations(); err != nil {
		t.Fatalf("ListLocations() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header, rule and 2 locations:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[2], "Smart Location") || !strings.Contains(lines[2], "smart") {
		t.Errorf("line 3 = %q, want the smart location", lines[2])
	}
	if !strings.HasPrefix(lines[3], "Europe") || !strings.Contains(lines[3], "uklo") {
		t.Errorf("line 4 = %q, want the London location", lines[3])
	}
}

func TestPrintHelp(t *testing.T) {
	var out bytes.Buffer
	PrintHelp(&out)

	for _, flag := range []string{"--status", "--connect", "--disconnect", "--list", "--tui", "--config"} {
		if !strings.Contains(out.String(), flag) {
			t.Errorf("help does not mention %s", flag)
		}
	}
}
