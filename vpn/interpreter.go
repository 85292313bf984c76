// Package vpn provides the connection logic of EVPN Assistant.
// This file contains the StatusInterpreter which maps the client's console
// text onto a ConnectionState.
package vpn

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/yllada/evpn-assistant/common"
)

// statusRule maps any of its substrings to a state.
type statusRule struct {
	substrings []string
	state      ConnectionState
	label      string
}

// statusRules are tried against each line in this order. The first line
// that satisfies any rule decides the state.
var statusRules = []statusRule{
	{[]string{"Connected"}, StateConnected, "Connected"},
	{[]string{"Not connected"}, StateNotConnected, "Not Connected"},
	{[]string{"Disconnected"}, StateDisconnected, "Disconnected"},
	{[]string{"Connecting", "Disconnecting", "Reconnecting"}, StatePending, "Negotiating Connection Status"},
}

// notices are logged when seen but never change the state.
var notices = []struct {
	substring string
	label     string
}{
	{"A new version is available", "Update Available"},
	{"- To protect your privacy if your VPN connection unexpectedly drops", "Hints & Tips Available"},
}

// Interpreter turns client output into a ConnectionState.
type Interpreter struct {
	logger common.Logger
}

// NewInterpreter creates an interpreter that reports what it recognises
// to logger.
func NewInterpreter(logger common.Logger) *Interpreter {
	if logger == nil {
		logger = common.NopLogger{}
	}
	return &Interpreter{logger: logger}
}

// Interpret scans lines in order and returns the state of the first line
// matching a rule, or StateUnknown when none does.
func (i *Interpreter) Interpret(lines []string) ConnectionState {
	if len(lines) == 0 {
		return StateUnknown
	}

	for _, raw := range lines {
		line := ansi.Strip(raw)

		if state, label, ok := matchStatus(line); ok {
			i.logger.Info("*** %s ***", label)
			return state
		}

		for _, n := range notices {
			if strings.Contains(line, n.substring) {
				i.logger.Info("*** %s ***", n.label)
			}
		}
	}

	return StateUnknown
}

func matchStatus(line string) (ConnectionState, string, bool) {
	for _, rule := range statusRules {
		for _, s := range rule.substrings {
			if strings.Contains(line, s) {
				return rule.state, rule.label, true
			}
		}
	}
	return StateUnknown, "", false
}
