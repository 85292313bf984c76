// Package vpn provides the connection logic of EVPN Assistant.
// This file contains the Controller which exposes the client's status,
// connect and disconnect commands as ConnectionState-returning calls.
package vpn

import (
	"context"
	"strings"

	"github.com/yllada/evpn-assistant/common"
	"golang.org/x/sync/singleflight"
)

// Client is the set of high level client operations the orchestrator and
// the poller depend on. None of them fail: problems surface as
// StateUnknown.
type Client interface {
	CheckStatus(ctx context.Context) ConnectionState
	Connect(ctx context.Context, destination string) ConnectionState
	Disconnect(ctx context.Context) ConnectionState
}

// Controller drives the client CLI through a Runner and interprets what it
// prints. It keeps no history between calls.
type Controller struct {
	runner      Runner
	interpreter *Interpreter
	logger      common.Logger

	// status collapses concurrent status checks into one client process.
	status singleflight.Group
}

// NewController creates a controller on top of runner.
func NewController(runner Runner, logger common.Logger) *Controller {
	if logger == nil {
		logger = common.NopLogger{}
	}
	return &Controller{
		runner:      runner,
		interpreter: NewInterpreter(logger),
		logger:      logger,
	}
}

// CheckStatus runs `status`.
func (c *Controller) CheckStatus(ctx context.Context) ConnectionState {
	v, _, shared := c.status.Do("status", func() (interface{}, error) {
		return c.run(ctx, CmdCheckStatus, "status"), nil
	})
	if shared {
		c.logger.Debug("Status check shared with a concurrent caller")
	}
	return v.(ConnectionState)
}

// Connect runs `connect <destination>`. An empty destination lets the
// client pick its own location.
func (c *Controller) Connect(ctx context.Context, destination string) ConnectionState {
	if destination == "" {
		return c.run(ctx, CmdConnect, "connect")
	}
	return c.run(ctx, CmdConnect, "connect", destination)
}

// Disconnect runs `disconnect`.
func (c *Controller) Disconnect(ctx context.Context) ConnectionState {
	return c.run(ctx, CmdDisconnect, "disconnect")
}

func (c *Controller) run(ctx context.Context, kind CommandKind, args ...string) ConnectionState {
	if kind != CmdCheckStatus {
		// Checks issued from here on must not join a status process that
		// started before this command changed the connection.
		c.status.Forget("status")
		defer c.status.Forget("status")
	}

	id := common.GenerateID()
	c.logger.Debug("Executing cmd [%s]: %s. Cmd type: %s", id, strings.Join(args, " "), kind)

	res, err := c.runner.Execute(ctx, args)
	if err != nil {
		c.logger.Error("Unable to determine VPN status [%s]: %v. Is ExpressVPN installed?", id, err)
		return StateUnknown
	}

	c.logger.Debug("Subprocess [%s] pid %d exited %d, lines read: %d (stderr %d)",
		id, res.Pid, res.ExitStatus, len(res.Stdout), len(res.Stderr))
	for _, line := range res.Stdout {
		c.logger.Debug("[%s] %s", id, line)
	}

	state := c.interpreter.Interpret(res.Stdout)
	c.logger.Debug("Cmd [%s] %s resolved to %s", id, kind, state)
	return state
}
