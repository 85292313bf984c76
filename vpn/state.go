// Package vpn provides the connection logic of EVPN Assistant.
// This file contains the connection state and command kind enumerations.
package vpn

// ConnectionState is the VPN client's connection phase as reported by its
// CLI. Anything that cannot be determined is StateUnknown.
type ConnectionState int

const (
	// StateUnknown means the state could not be determined.
	StateUnknown ConnectionState = iota
	// StatePending means a connect, disconnect or reconnect is underway.
	StatePending
	// StateNotConnected means the client is idle.
	StateNotConnected
	// StateConnected means a tunnel is up.
	StateConnected
	// StateDisconnected means the tunnel was just torn down.
	StateDisconnected
	StateDisconnecting
	StateConnecting
	StateReconnecting
)

// String returns a human-readable representation of the connection state.
func (s ConnectionState) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateNotConnected:
		return "Not connected"
	case StateConnected:
		return "Connected"
	case StateDisconnected:
		return "Disconnected"
	case StateDisconnecting:
		return "Disconnecting"
	case StateConnecting:
		return "Connecting"
	case StateReconnecting:
		return "Reconnecting"
	default:
		return "Unknown"
	}
}

// IsTransitional reports whether the client is between two stable states.
func (s ConnectionState) IsTransitional() bool {
	switch s {
	case StatePending, StateConnecting, StateDisconnecting, StateReconnecting:
		return true
	}
	return false
}

// StateListener receives every state produced by a check, connect or
// disconnect.
type StateListener interface {
	OnStateChanged(state ConnectionState)
}

// StateListenerFunc adapts a function to StateListener.
type StateListenerFunc func(state ConnectionState)

// OnStateChanged calls f(state).
func (f StateListenerFunc) OnStateChanged(state ConnectionState) {
	f(state)
}

// CommandKind tags a client invocation for logging.
type CommandKind int

const (
	CmdCheckStatus CommandKind = iota
	CmdConnect
	CmdDisconnect
)

// String returns the command kind name used in log lines.
func (k CommandKind) String() string {
	switch k {
	case CmdCheckStatus:
		return "CheckVpnStatus"
	case CmdConnect:
		return "Connect"
	case CmdDisconnect:
		return "Disconnect"
	default:
		return "Unknown"
	}
}
