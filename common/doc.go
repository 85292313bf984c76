// Package common provides shared constants, types, utilities, and interfaces
// used throughout EVPN Assistant.
//
// This package holds the cross-cutting concerns:
//
//   - Constants: file names, polling bounds, drain timeouts
//   - Errors: sentinel errors checked with errors.Is
//   - Interfaces: Logger and Notifier abstractions injected into components
//   - Logger: leveled logging with optional rotating file output
//   - Utils: config directory lookup, ids, rgb colour helpers
//
// # Usage
//
//	logger := common.GetLogger().WithComponent("poller")
//	logger.Info("Polling set to: %d seconds", 60)
//
//	if errors.Is(err, common.ErrProcessSpawn) {
//	    // the client binary is missing
//	}
package common
