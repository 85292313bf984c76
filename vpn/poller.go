// Package vpn provides the connection logic of EVPN Assistant.
// This file contains the Poller which keeps the displayed state current by
// re-checking the client on a self-rescheduling timer.
package vpn

import (
	"context"
	"sync"
	"time"

	"github.com/yllada/evpn-assistant/common"
)

// StatusChecker is the one client operation the poller needs.
type StatusChecker interface {
	CheckStatus(ctx context.Context) ConnectionState
}

// Poller periodically checks the client status and publishes it.
//
// The next tick is scheduled only after the current check has returned, so
// at most one check is in flight and a slow client delays the schedule
// instead of stacking checks up.
type Poller struct {
	mu       sync.Mutex
	ctx      context.Context
	checker  StatusChecker
	listener StateListener
	logger   common.Logger
	interval time.Duration
	active   bool
	session  uint64
	timer    *time.Timer
}

// NewPoller creates a stopped poller. Checks run under ctx; cancelling it
// ends polling for good.
func NewPoller(ctx context.Context, checker StatusChecker, interval time.Duration, logger common.Logger) *Poller {
	if logger == nil {
		logger = common.NopLogger{}
	}
	return &Poller{
		ctx:      ctx,
		checker:  checker,
		logger:   logger,
		interval: interval,
	}
}

// SetListener sets the receiver of every polled state.
func (p *Poller) SetListener(listener StateListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listener = listener
}

// Start begins polling with an immediate check. It does nothing if polling
// is already active.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		return
	}
	p.active = true
	p.session++
	session := p.session
	interval := p.interval
	p.mu.Unlock()

	p.logger.Debug("StartVpnStatusPolling() interval %v", interval)
	go p.cycle(session)
}

// Stop cancels the next scheduled check. A check already running is left
// to finish but is not rescheduled. Stopping a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return
	}
	p.active = false
	p.session++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.logger.Debug("StopVpnStatusPolling()")
}

// SetInterval changes the delay used for the next reschedule. It does not
// touch a timer that is already armed; Stop then Start to apply it now.
func (p *Poller) SetInterval(interval time.Duration) {
	if interval <= 0 {
		p.logger.Warn("Ignoring non-positive polling interval %v", interval)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interval = interval
}

// Interval returns the current polling interval.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// IsActive reports whether polling is running.
func (p *Poller) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Poller) cycle(session uint64) {
	p.logger.Debug("Polling VPN Status: %s", time.Now().Format(time.RFC3339))

	state := p.check()
	switch state {
	case StateNotConnected:
		p.logger.Debug("*** NOT CONNECTED ***")
	case StateConnected:
		p.logger.Debug("*** CONNECTED ***")
	case StatePending:
		p.logger.Debug("*** PENDING ***")
	case StateDisconnected, StateDisconnecting:
		p.logger.Debug("*** NEGOTIATING ***")
	}

	p.publish(state)

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active || p.session != session {
		return
	}
	if p.ctx.Err() != nil {
		p.active = false
		return
	}

	p.timer = time.AfterFunc(p.interval, func() { p.cycle(session) })
	p.logger.Debug("Polling set to: %v", p.interval)
}

func (p *Poller) publish(state ConnectionState) {
	p.mu.Lock()
	listener := p.listener
	p.mu.Unlock()
	if listener == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("State listener failed: %v", r)
		}
	}()
	listener.OnStateChanged(state)
}

func (p *Poller) check() (state ConnectionState) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("An error occurred polling the VPN status: %v", r)
			state = StateUnknown
		}
	}()
	return p.checker.CheckStatus(p.ctx)
}
