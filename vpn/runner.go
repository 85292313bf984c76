// Package vpn provides the connection logic of EVPN Assistant.
// This file contains the ProcessRunner which spawns the VPN client CLI and
// collects its console output line by line.
package vpn

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/yllada/evpn-assistant/common"
)

// Result is a finished client invocation. Ownership of the line buffers
// passes to the caller.
type Result struct {
	Pid        int
	ExitStatus int
	Stdout     []string
	Stderr     []string
}

// Runner executes the VPN client CLI with the given arguments.
type Runner interface {
	Execute(ctx context.Context, args []string) (*Result, error)
}

// ProcessError reports a client invocation that produced no usable stdout.
// It unwraps to its Kind (common.ErrProcessSpawn, common.ErrProcessExit or
// common.ErrStreamRead) and to the underlying cause.
type ProcessError struct {
	Op         string
	Args       []string
	ExitStatus int
	Kind       error
	Err        error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("unable to process stdout (%s %q)", e.Op, strings.Join(e.Args, " "))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProcessError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ProcessRunner runs the client binary as a child process. Each invocation
// owns two pipes and one process handle which are released exactly once,
// after the process has exited or failed to start.
type ProcessRunner struct {
	binary       string
	logger       common.Logger
	drainTimeout time.Duration

	// observe, when set, is told about every released resource.
	observe func(event string)
}

// NewProcessRunner creates a runner for the client binary at path.
func NewProcessRunner(binary string, logger common.Logger) *ProcessRunner {
	if logger == nil {
		logger = common.NopLogger{}
	}
	return &ProcessRunner{
		binary:       binary,
		logger:       logger,
		drainTimeout: common.StdoutDrainTimeout,
	}
}

// Binary returns the path of the client binary.
func (r *ProcessRunner) Binary() string {
	return r.binary
}

// Execute starts the client and waits for it to exit. A zero exit status
// yields the stdout lines read so far; stderr is informational only and
// never fails the call.
func (r *ProcessRunner) Execute(ctx context.Context, args []string) (*Result, error) {
	inv, err := r.start(ctx, args)
	if err != nil {
		return nil, err
	}
	return inv.wait()
}

// invocation is one running client process.
type invocation struct {
	runner  *ProcessRunner
	args    []string
	cmd     *exec.Cmd
	stdoutR *os.File
	stderrR *os.File
	stdout  *lineCollector
	stderr  *lineCollector
	once    sync.Once
}

func (r *ProcessRunner) start(ctx context.Context, args []string) (*invocation, error) {
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, &ProcessError{Op: "spawn", Args: args, Kind: common.ErrProcessSpawn, Err: err}
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, &ProcessError{Op: "spawn", Args: args, Kind: common.ErrProcessSpawn, Err: err}
	}

	// Stdin stays nil so the child reads from the null device.
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	inv := &invocation{
		runner:  r,
		args:    args,
		cmd:     cmd,
		stdoutR: stdoutR,
		stderrR: stderrR,
		stdout:  newLineCollector(),
		stderr:  newLineCollector(),
	}

	startErr := cmd.Start()

	// The child holds its own copies of the write ends; ours must go so the
	// readers see end-of-stream when it exits.
	stdoutW.Close()
	stderrW.Close()

	if startErr != nil {
		inv.release()
		return nil, &ProcessError{Op: "spawn", Args: args, Kind: common.ErrProcessSpawn, Err: startErr}
	}

	r.logger.Debug("Pid for cmd %s %s: %d", r.binary, strings.Join(args, " "), cmd.Process.Pid)

	go inv.stdout.collect(stdoutR)
	go inv.stderr.collect(stderrR)

	return inv, nil
}

func (inv *invocation) wait() (*Result, error) {
	r := inv.runner
	waitErr := inv.cmd.Wait()
	pid := inv.cmd.Process.Pid

	select {
	case <-inv.stdout.done:
	case <-time.After(r.drainTimeout):
		r.logger.Warn("stdout of pid %d still open %v after exit, using lines read so far", pid, r.drainTimeout)
	}

	r.logger.Debug("Closing streams and pid %d", pid)
	inv.release()

	<-inv.stdout.done
	<-inv.stderr.done

	stdoutLines, stdoutErr := inv.stdout.snapshot()
	stderrLines, stderrErr := inv.stderr.snapshot()

	if stderrErr != nil {
		r.logger.Warn("Reading stderr of pid %d failed: %v", pid, stderrErr)
	}
	for _, line := range stderrLines {
		r.logger.Debug("stderr[%d]: %s", pid, line)
	}

	exitStatus := inv.cmd.ProcessState.ExitCode()

	if waitErr != nil {
		return nil, &ProcessError{
			Op:         "exit",
			Args:       inv.args,
			ExitStatus: exitStatus,
			Kind:       common.ErrProcessExit,
			Err:        waitErr,
		}
	}
	if stdoutErr != nil {
		return nil, &ProcessError{Op: "read", Args: inv.args, Kind: common.ErrStreamRead, Err: stdoutErr}
	}

	return &Result{
		Pid:        pid,
		ExitStatus: exitStatus,
		Stdout:     stdoutLines,
		Stderr:     stderrLines,
	}, nil
}

// release closes both read ends and the process handle. Safe to call more
// than once; only the first call does anything.
func (inv *invocation) release() {
	inv.once.Do(func() {
		inv.stdoutR.Close()
		inv.runner.emit("stdout-closed")
		inv.stderrR.Close()
		inv.runner.emit("stderr-closed")
		if inv.cmd.Process != nil {
			_ = inv.cmd.Process.Release()
			inv.runner.emit("process-released")
		}
	})
}

func (r *ProcessRunner) emit(event string) {
	if r.observe != nil {
		r.observe(event)
	}
}

// lineCollector accumulates lines from one stream in arrival order.
type lineCollector struct {
	mu    sync.Mutex
	lines []string
	err   error
	done  chan struct{}
}

func newLineCollector() *lineCollector {
	return &lineCollector{done: make(chan struct{})}
}

// collect reads one line at a time until end-of-stream, a read error, or
// the stream being closed underneath it. Lines longer than MaxLineLength are
// truncated; the rest of such a line is still read and discarded.
func (c *lineCollector) collect(rd io.Reader) {
	defer close(c.done)

	br := bufio.NewReaderSize(rd, 4096)
	var line []byte
	for {
		chunk, err := br.ReadSlice('\n')
		if room := common.MaxLineLength - len(line); room > 0 {
			if len(chunk) > room {
				chunk = chunk[:room]
			}
			line = append(line, chunk...)
		}

		switch {
		case err == nil:
			c.add(line)
			line = line[:0]
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if len(line) > 0 {
				c.add(line)
			}
			return
		default:
			if !errors.Is(err, os.ErrClosed) {
				c.mu.Lock()
				c.err = err
				c.mu.Unlock()
			}
			return
		}
	}
}

func (c *lineCollector) add(line []byte) {
	text := strings.TrimSuffix(string(line), "\n")
	text = strings.TrimSuffix(text, "\r")
	c.mu.Lock()
	c.lines = append(c.lines, text)
	c.mu.Unlock()
}

func (c *lineCollector) snapshot() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]string, len(c.lines))
	copy(lines, c.lines)
	return lines, c.err
}
