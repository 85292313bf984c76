// Package vpn provides the connection logic of EVPN Assistant.
// This file contains the Orchestrator which turns a user's connect or
// disconnect request into the right sequence of client commands.
package vpn

import (
	"context"

	"github.com/yllada/evpn-assistant/common"
)

// Orchestrator implements the menu actions. It holds no state between
// calls; the only state it threads is the ConnectionState of the action in
// progress.
type Orchestrator struct {
	client   Client
	listener StateListener
	logger   common.Logger
}

// NewOrchestrator creates an orchestrator. listener may be nil.
func NewOrchestrator(client Client, listener StateListener, logger common.Logger) *Orchestrator {
	if logger == nil {
		logger = common.NopLogger{}
	}
	return &Orchestrator{
		client:   client,
		listener: listener,
		logger:   logger,
	}
}

// PerformConnect connects to destination. A live connection is torn down
// first; a transition already in progress is only re-checked. Any other
// starting state (Unknown, Disconnected, ...) is returned untouched without
// attempting a connect.
func (o *Orchestrator) PerformConnect(ctx context.Context, destination string) ConnectionState {
	status := o.step("status", func() ConnectionState { return o.client.CheckStatus(ctx) })
	o.logger.Debug("VPN status returned: %s", status)

	switch status {
	case StateConnected:
		o.logger.Debug("Attempting reconnect to %q", destination)
		o.disconnectFlow(ctx)
		status = o.step("connect", func() ConnectionState { return o.client.Connect(ctx, destination) })
		o.logger.Debug("VPN connect returned: %s", status)
	case StateNotConnected:
		status = o.step("connect", func() ConnectionState { return o.client.Connect(ctx, destination) })
		o.logger.Debug("VPN connect returned: %s", status)
	case StatePending:
		status = o.step("status", func() ConnectionState { return o.client.CheckStatus(ctx) })
		o.logger.Debug("VPN status returned: %s", status)
	}

	o.publish(status)
	return status
}

// PerformDisconnect disconnects if connected and then re-checks until the
// reported state has had a chance to settle.
func (o *Orchestrator) PerformDisconnect(ctx context.Context) ConnectionState {
	status := o.disconnectFlow(ctx)
	o.publish(status)
	return status
}

// Refresh checks the status once and publishes it.
func (o *Orchestrator) Refresh(ctx context.Context) ConnectionState {
	status := o.step("status", func() ConnectionState { return o.client.CheckStatus(ctx) })
	o.publish(status)
	return status
}

func (o *Orchestrator) disconnectFlow(ctx context.Context) ConnectionState {
	status := o.step("status", func() ConnectionState { return o.client.CheckStatus(ctx) })

	if status == StateConnected {
		status = o.step("disconnect", func() ConnectionState { return o.client.Disconnect(ctx) })
	}
	if status == StatePending {
		status = o.step("status", func() ConnectionState { return o.client.CheckStatus(ctx) })
	}
	if status == StateDisconnected || status == StateDisconnecting {
		status = o.step("status", func() ConnectionState { return o.client.CheckStatus(ctx) })
	}

	return status
}

// step runs one client call. A panic inside it is logged and treated as
// StateUnknown so that an action always resolves to some state.
func (o *Orchestrator) step(name string, call func() ConnectionState) (state ConnectionState) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Failed to obtain VPN status during %s: %v", name, r)
			state = StateUnknown
		}
	}()
	return call()
}

func (o *Orchestrator) publish(state ConnectionState) {
	if o.listener == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("State listener failed: %v", r)
		}
	}()
	o.listener.OnStateChanged(state)
}
