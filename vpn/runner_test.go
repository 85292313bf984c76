package vpn

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/yllada/evpn-assistant/common"
)

// eventLog records resource release events from a ProcessRunner.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (e *eventLog) record(event string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *eventLog) get() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.events...)
}

func newShellRunner(events *eventLog) *ProcessRunner {
	r := NewProcessRunner("/bin/sh", nil)
	if events != nil {
		r.observe = events.record
	}
	return r
}

func TestProcessRunner_Stdout(t *testing.T) {
	events := &eventLog{}
	r := newShellRunner(events)

	res, err := r.Execute(context.Background(), []string{"-c", "echo 'Connected to USA'; echo; echo second"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := []string{"Connected to USA", "", "second"}
	if diff := cmp.Diff(want, res.Stdout); diff != "" {
		t.Errorf("Stdout mismatch (-want +got):\n%s", diff)
	}
	if res.ExitStatus != 0 {
		t.Errorf("ExitStatus = %d, want 0", res.ExitStatus)
	}
	if res.Pid <= 0 {
		t.Errorf("Pid = %d, want > 0", res.Pid)
	}

	wantEvents := []string{"stdout-closed", "stderr-closed", "process-released"}
	if diff := cmp.Diff(wantEvents, events.get()); diff != "" {
		t.Errorf("release events mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessRunner_StderrDoesNotFail(t *testing.T) {
	r := newShellRunner(nil)

	res, err := r.Execute(context.Background(), []string{"-c", "echo oops 1>&2; echo 'Not connected'"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Not connected"}, res.Stdout); diff != "" {
		t.Errorf("Stdout mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"oops"}, res.Stderr); diff != "" {
		t.Errorf("Stderr mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessRunner_NonZeroExit(t *testing.T) {
	events := &eventLog{}
	r := newShellRunner(events)

	res, err := r.Execute(context.Background(), []string{"-c", "echo Connected; exit 3"})
	if err == nil {
		t.Fatalf("Execute() = %v, want error", res)
	}
	if res != nil {
		t.Errorf("Execute() result = %v, want nil on failure", res)
	}
	if !errors.Is(err, common.ErrProcessExit) {
		t.Errorf("errors.Is(err, ErrProcessExit) = false, err = %v", err)
	}

	var perr *ProcessError
	if !errors.As(err, &perr) {
		t.Fatalf("error %T is not a *ProcessError", err)
	}
	if perr.ExitStatus != 3 {
		t.Errorf("ExitStatus = %d, want 3", perr.ExitStatus)
	}
	if !strings.Contains(err.Error(), "unable to process stdout") {
		t.Errorf("Error() = %q, want it to mention stdout", err.Error())
	}

	wantEvents := []string{"stdout-closed", "stderr-closed", "process-released"}
	if diff := cmp.Diff(wantEvents, events.get()); diff != "" {
		t.Errorf("release events mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessRunner_MissingBinary(t *testing.T) {
	events := &eventLog{}
	r := NewProcessRunner("/nonexistent/path/to/expressvpn", nil)
	r.observe = events.record

	_, err := r.Execute(context.Background(), []string{"status"})
	if !errors.Is(err, common.ErrProcessSpawn) {
		t.Fatalf("errors.Is(err, ErrProcessSpawn) = false, err = %v", err)
	}

	// No process was created, so only the pipes are released.
	wantEvents := []string{"stdout-closed", "stderr-closed"}
	if diff := cmp.Diff(wantEvents, events.get()); diff != "" {
		t.Errorf("release events mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessRunner_GrandchildHoldsStdout(t *testing.T) {
	events := &eventLog{}
	r := newShellRunner(events)
	r.drainTimeout = 50 * time.Millisecond

	start := time.Now()
	res, err := r.Execute(context.Background(), []string{"-c", "echo Connected; sleep 2 &"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Execute() took %v, want it bounded by the drain timeout", elapsed)
	}
	if diff := cmp.Diff([]string{"Connected"}, res.Stdout); diff != "" {
		t.Errorf("Stdout mismatch (-want +got):\n%s", diff)
	}
	if got := len(events.get()); got != 3 {
		t.Errorf("got %d release events, want 3", got)
	}
}

func TestProcessRunner_OversizedLine(t *testing.T) {
	r := newShellRunner(nil)

	done := make(chan struct{})
	var res *Result
	var err error
	go func() {
		defer close(done)
		res, err = r.Execute(context.Background(), []string{"-c",
			"head -c 300000 /dev/zero | tr '\\0' x; echo; echo Connected"})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Execute() blocked on a line longer than MaxLineLength")
	}
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(res.Stdout) != 2 {
		t.Fatalf("got %d stdout lines, want 2", len(res.Stdout))
	}
	if got := res.Stdout[0]; got != strings.Repeat("x", common.MaxLineLength) {
		t.Errorf("first line has %d bytes, want it truncated to %d", len(got), common.MaxLineLength)
	}
	if got := res.Stdout[1]; got != "Connected" {
		t.Errorf("second line = %q, want %q", got, "Connected")
	}
}

func TestProcessRunner_ContextCancel(t *testing.T) {
	r := newShellRunner(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := r.Execute(ctx, []string{"-c", "sleep 5"})
	if !errors.Is(err, common.ErrProcessExit) {
		t.Errorf("errors.Is(err, ErrProcessExit) = false, err = %v", err)
	}
}

func TestProcessRunner_ConcurrentInvocations(t *testing.T) {
	events := &eventLog{}
	r := newShellRunner(events)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := r.Execute(context.Background(), []string{"-c", "echo Disconnected"})
			if err != nil {
				errs <- err
				return
			}
			if len(res.Stdout) != 1 || res.Stdout[0] != "Disconnected" {
				errs <- errors.New("unexpected stdout: " + strings.Join(res.Stdout, "|"))
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}

	counts := map[string]int{}
	for _, e := range events.get() {
		counts[e]++
	}
	for _, e := range []string{"stdout-closed", "stderr-closed", "process-released"} {
		if counts[e] != n {
			t.Errorf("%s happened %d times, want %d", e, counts[e], n)
		}
	}
}

func TestProcessRunner_Binary(t *testing.T) {
	r := NewProcessRunner(common.DefaultBinaryPath, nil)
	if r.Binary() != common.DefaultBinaryPath {
		t.Errorf("Binary() = %q, want %q", r.Binary(), common.DefaultBinaryPath)
	}
}
