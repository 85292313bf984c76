// Package vpn provides the connection logic of EVPN Assistant.
//
// The package drives the ExpressVPN command line client and reduces what it
// prints to a ConnectionState:
//
//   - ProcessRunner: spawns the client binary and collects its output lines
//   - Interpreter: maps output lines onto a ConnectionState
//   - Controller: status, connect and disconnect as state-returning calls
//   - Orchestrator: the multi-step connect and disconnect menu actions
//   - Poller: periodic status checks on a self-rescheduling timer
//   - LocationMenu: the catalogue of destinations offered in menus
//
// # Connection Flow
//
// A connect request from a menu goes through the orchestrator:
//
//	client := vpn.NewController(vpn.NewProcessRunner("/usr/bin/expressvpn", logger), logger)
//	orch := vpn.NewOrchestrator(client, listener, logger)
//	state := orch.PerformConnect(ctx, "usny")
//
// If the client is already connected it is disconnected first and the
// status re-checked before connecting to the new destination.
//
// # Failure Handling
//
// None of the high level operations return errors. A client that cannot be
// launched, exits abnormally or prints nothing recognisable yields
// StateUnknown, and the cause is logged.
//
// # Thread Safety
//
// Controller, Orchestrator and Poller are safe for concurrent use.
// Concurrent status checks on one Controller share a single client process.
package vpn
