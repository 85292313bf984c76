package vpn

import "testing"

func TestConnectionState_String(t *testing.T) {
	tests := []struct {
		state    ConnectionState
		expected string
	}{
		{StateUnknown, "Unknown"},
		{StatePending, "Pending"},
		{StateNotConnected, "Not connected"},
		{StateConnected, "Connected"},
		{StateDisconnected, "Disconnected"},
		{StateDisconnecting, "Disconnecting"},
		{StateConnecting, "Connecting"},
		{StateReconnecting, "Reconnecting"},
		{ConnectionState(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("ConnectionState.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConnectionState_IsTransitional(t *testing.T) {
	transitional := map[ConnectionState]bool{
		StatePending:       true,
		StateConnecting:    true,
		StateDisconnecting: true,
		StateReconnecting:  true,
	}

	for s := StateUnknown; s <= StateReconnecting; s++ {
		if got := s.IsTransitional(); got != transitional[s] {
			t.Errorf("%v.IsTransitional() = %v, want %v", s, got, transitional[s])
		}
	}
}

func TestCommandKind_String(t *testing.T) {
	tests := []struct {
		kind     CommandKind
		expected string
	}{
		{CmdCheckStatus, "CheckVpnStatus"},
		{CmdConnect, "Connect"},
		{CmdDisconnect, "Disconnect"},
		{CommandKind(42), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("CommandKind(%d).String() = %v, want %v", tt.kind, got, tt.expected)
		}
	}
}

func TestStateListenerFunc(t *testing.T) {
	var got ConnectionState
	var l StateListener = StateListenerFunc(func(s ConnectionState) { got = s })

	l.OnStateChanged(StateConnected)

	if got != StateConnected {
		t.Errorf("listener received %v, want Connected", got)
	}
}
