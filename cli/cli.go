// Package cli provides command-line interface functionality for EVPN Assistant.
// This allows users to check, connect and disconnect the VPN from the
// terminal without starting the tray indicator.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/yllada/evpn-assistant/common"
	"github.com/yllada/evpn-assistant/ui"
	"github.com/yllada/evpn-assistant/vpn"
	"golang.org/x/term"
)

// Actions is the part of the orchestrator the CLI drives.
type Actions interface {
	PerformConnect(ctx context.Context, destination string) vpn.ConnectionState
	PerformDisconnect(ctx context.Context) vpn.ConnectionState
	Refresh(ctx context.Context) vpn.ConnectionState
}

// ErrUnexpectedState is returned when an action ends in a state other than
// the one it was meant to reach.
var ErrUnexpectedState = errors.New("vpn did not reach the requested state")

// CLI represents the command-line interface.
type CLI struct {
	actions   Actions
	locations *vpn.LocationMenu
	out       io.Writer
	styled    bool
}

// New creates a new CLI instance printing to out. Output is coloured only
// when out is a terminal.
func New(actions Actions, locations *vpn.LocationMenu, out io.Writer) *CLI {
	if locations == nil {
		locations = vpn.DefaultLocations()
	}

	styled := false
	if f, ok := out.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}

	return &CLI{
		actions:   actions,
		locations: locations,
		out:       out,
		styled:    styled,
	}
}

// Status shows the current connection status.
func (c *CLI) Status(ctx context.Context) error {
	state := c.actions.Refresh(ctx)
	fmt.Fprintf(c.out, "VPN status: %s\n", c.render(state))

	if state == vpn.StateUnknown {
		return fmt.Errorf("%w: status is %s", ErrUnexpectedState, state)
	}
	return nil
}

// Connect connects to a location given by code or label. Values that are
// not in the catalogue are passed to the client as they are.
func (c *CLI) Connect(ctx context.Context, query string) error {
	destination := query
	name := query
	if loc, err := c.locations.Find(query); err == nil {
		destination = loc.Code
		name = loc.Label
	} else if errors.Is(err, common.ErrLocationNotFound) && query != "" {
		fmt.Fprintf(c.out, "%q is not in the location list, passing it to the client as is\n", query)
	}

	if destination == "" {
		fmt.Fprintln(c.out, "Connecting to the smart location...")
	} else {
		fmt.Fprintf(c.out, "Connecting to %s...\n", name)
	}

	state := c.actions.PerformConnect(ctx, destination)
	if state != vpn.StateConnected {
		return fmt.Errorf("%w: connect ended %s", ErrUnexpectedState, state)
	}

	fmt.Fprintf(c.out, "✓ %s\n", c.render(state))
	return nil
}

// Disconnect disconnects the VPN.
func (c *CLI) Disconnect(ctx context.Context) error {
	fmt.Fprintln(c.out, "Disconnecting...")

	state := c.actions.PerformDisconnect(ctx)
	if state == vpn.StateConnected {
		return fmt.Errorf("%w: still %s", ErrUnexpectedState, state)
	}

	fmt.Fprintf(c.out, "✓ %s\n", c.render(state))
	return nil
}

// ListLocations prints the location catalogue.
func (c *CLI) ListLocations() error {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tLOCATION\tCODE")
	fmt.Fprintln(w, "-----\t--------\t----")

	for _, g := range c.locations.Groups {
		switch {
		case g.IsSeparator():
		case g.IsTopLevel():
			fmt.Fprintf(w, "%s\t%s\t%s\n", "-", g.Items[0].Label, g.Items[0].Code)
		default:
			for _, loc := range g.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\n", g.Label, loc.Label, loc.Code)
			}
		}
	}

	return w.Flush()
}

func (c *CLI) render(state vpn.ConnectionState) string {
	if c.styled {
		return ui.RenderState(state)
	}
	return state.String()
}

// PrintHelp prints CLI usage help.
func PrintHelp(w io.Writer) {
	fmt.Fprintln(w, `EVPN Assistant - ExpressVPN tray indicator

Usage:
  evpn-assistant [OPTIONS]

Options:
  --version         Show version and exit
  --verbose         Enable verbose logging
  --config PATH     Use a different settings file
  --status          Show current connection status
  --connect LOC     Connect to a location (code or name, "" for smart)
  --disconnect      Disconnect from the VPN
  --list            List the known locations
  --tui             Open the terminal dashboard
  --help            Show this help message

Examples:
  evpn-assistant --status
  evpn-assistant --connect usny
  evpn-assistant --connect "UK - London"
  evpn-assistant --disconnect

Notes:
  - The ExpressVPN client must be installed and activated
  - Run without options to start the tray indicator`)
}
