package vpn

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// countingChecker counts status checks and tracks how many overlap.
type countingChecker struct {
	state   ConnectionState
	delay   time.Duration
	block   chan struct{}
	calls   int32
	running int32
	peak    int32
}

func (c *countingChecker) CheckStatus(ctx context.Context) ConnectionState {
	n := atomic.AddInt32(&c.running, 1)
	defer atomic.AddInt32(&c.running, -1)
	for {
		p := atomic.LoadInt32(&c.peak)
		if n <= p || atomic.CompareAndSwapInt32(&c.peak, p, n) {
			break
		}
	}
	atomic.AddInt32(&c.calls, 1)

	if c.block != nil {
		<-c.block
	}
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	return c.state
}

func (c *countingChecker) count() int32 {
	return atomic.LoadInt32(&c.calls)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestPoller_StartChecksImmediately(t *testing.T) {
	checker := &countingChecker{state: StateConnected}
	p := NewPoller(context.Background(), checker, time.Hour, nil)

	published := make(chan ConnectionState, 1)
	p.SetListener(StateListenerFunc(func(s ConnectionState) { published <- s }))

	p.Start()
	defer p.Stop()

	select {
	case got := <-published:
		if got != StateConnected {
			t.Errorf("published %v, want Connected", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no state published after Start")
	}

	if !p.IsActive() {
		t.Error("IsActive() = false after Start")
	}
}

func TestPoller_Reschedules(t *testing.T) {
	checker := &countingChecker{state: StateNotConnected}
	p := NewPoller(context.Background(), checker, 10*time.Millisecond, nil)

	p.Start()
	waitFor(t, 2*time.Second, func() bool { return checker.count() >= 3 })
	p.Stop()
}

func TestPoller_NoOverlappingChecks(t *testing.T) {
	checker := &countingChecker{state: StateConnected, delay: 30 * time.Millisecond}
	p := NewPoller(context.Background(), checker, time.Millisecond, nil)

	p.Start()
	waitFor(t, 2*time.Second, func() bool { return checker.count() >= 4 })
	p.Stop()

	if peak := atomic.LoadInt32(&checker.peak); peak != 1 {
		t.Errorf("%d checks ran at once, want 1", peak)
	}
}

func TestPoller_StopHaltsChecks(t *testing.T) {
	checker := &countingChecker{state: StateConnected}
	p := NewPoller(context.Background(), checker, 20*time.Millisecond, nil)

	p.Start()
	waitFor(t, 2*time.Second, func() bool { return checker.count() >= 1 })
	p.Stop()

	// Allow a check that was already running to finish.
	time.Sleep(50 * time.Millisecond)
	before := checker.count()
	time.Sleep(100 * time.Millisecond)

	if after := checker.count(); after != before {
		t.Errorf("%d checks ran after Stop", after-before)
	}
	if p.IsActive() {
		t.Error("IsActive() = true after Stop")
	}
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	p := NewPoller(context.Background(), &countingChecker{}, time.Hour, nil)

	p.Stop()
	p.Start()
	p.Stop()
	p.Stop()

	if p.IsActive() {
		t.Error("IsActive() = true after Stop")
	}
}

func TestPoller_DoubleStartKeepsOneChain(t *testing.T) {
	checker := &countingChecker{state: StateConnected}
	p := NewPoller(context.Background(), checker, time.Hour, nil)

	p.Start()
	p.Start()
	defer p.Stop()

	waitFor(t, 2*time.Second, func() bool { return checker.count() >= 1 })
	time.Sleep(50 * time.Millisecond)

	if got := checker.count(); got != 1 {
		t.Errorf("%d checks after two Starts, want 1", got)
	}
}

func TestPoller_InFlightCheckAfterStop(t *testing.T) {
	checker := &countingChecker{state: StateDisconnected, block: make(chan struct{})}
	p := NewPoller(context.Background(), checker, 10*time.Millisecond, nil)

	published := make(chan ConnectionState, 4)
	p.SetListener(StateListenerFunc(func(s ConnectionState) { published <- s }))

	p.Start()
	waitFor(t, 2*time.Second, func() bool { return checker.count() == 1 })
	p.Stop()
	close(checker.block)

	select {
	case got := <-published:
		if got != StateDisconnected {
			t.Errorf("published %v, want Disconnected", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight check did not publish")
	}

	time.Sleep(50 * time.Millisecond)
	if got := checker.count(); got != 1 {
		t.Errorf("%d checks, want the stopped poller not to reschedule", got)
	}
}

func TestPoller_RestartAfterStop(t *testing.T) {
	checker := &countingChecker{state: StateConnected}
	p := NewPoller(context.Background(), checker, time.Hour, nil)

	p.Start()
	waitFor(t, 2*time.Second, func() bool { return checker.count() == 1 })
	p.Stop()
	p.Start()
	defer p.Stop()

	waitFor(t, 2*time.Second, func() bool { return checker.count() == 2 })
}

func TestPoller_SetInterval(t *testing.T) {
	p := NewPoller(context.Background(), &countingChecker{}, time.Minute, nil)

	p.SetInterval(10 * time.Second)
	if got := p.Interval(); got != 10*time.Second {
		t.Errorf("Interval() = %v, want 10s", got)
	}

	p.SetInterval(0)
	if got := p.Interval(); got != 10*time.Second {
		t.Errorf("Interval() = %v after SetInterval(0), want 10s", got)
	}

	if p.IsActive() {
		t.Error("SetInterval must not start polling")
	}
}

func TestPoller_ContextCancelEndsPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	checker := &countingChecker{state: StateConnected}
	p := NewPoller(ctx, checker, 10*time.Millisecond, nil)

	p.Start()
	waitFor(t, 2*time.Second, func() bool { return checker.count() >= 1 })
	cancel()

	waitFor(t, 2*time.Second, func() bool { return !p.IsActive() })
}

func TestPoller_CheckerPanicPublishesUnknown(t *testing.T) {
	p := NewPoller(context.Background(), panickyChecker{}, time.Hour, nil)

	published := make(chan ConnectionState, 1)
	p.SetListener(StateListenerFunc(func(s ConnectionState) { published <- s }))

	p.Start()
	defer p.Stop()

	select {
	case got := <-published:
		if got != StateUnknown {
			t.Errorf("published %v, want Unknown", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no state published")
	}
}

func TestPoller_ListenerPanicKeepsPolling(t *testing.T) {
	checker := &countingChecker{state: StateConnected}
	p := NewPoller(context.Background(), checker, 20*time.Millisecond, nil)

	var calls int32
	p.SetListener(StateListenerFunc(func(ConnectionState) {
		atomic.AddInt32(&calls, 1)
		panic("listener failed")
	}))

	p.Start()
	defer p.Stop()

	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&calls) >= 3 })
	if !p.IsActive() {
		t.Error("IsActive() = false after a listener panic, want true")
	}
}

type panickyChecker struct{}

func (panickyChecker) CheckStatus(context.Context) ConnectionState {
	panic("boom")
}
