// Package supervisor adapts launchd and friends to the ProcessSupervisor port.
package supervisor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/opsbay/caretaker/internal/domain"
	"github.com/opsbay/caretaker/internal/ports"
)

// Launchd restarts services via launchctl kickstart and answers port and
// liveness queries for the gateway and lock checkers.
type Launchd struct {
	timeout time.Duration
	logger  ports.Logger
}

// NewLaunchd builds the adapter. A zero timeout falls back to the default.
func NewLaunchd(timeout time.Duration, log ports.Logger) *Launchd {
	if timeout <= 0 {
		timeout = domain.DefaultCommandTimeout
	}
	return &Launchd{timeout: timeout, logger: log}
}

// Kickstart implements ports.ProcessSupervisor. The -k flag kills a running
// instance first, so the same command covers both restart and cold start.
func (l *Launchd) Kickstart(ctx context.Context, label string) error {
	target := fmt.Sprintf("gui/%d/%s", os.Getuid(), label)
	_, err := l.run(ctx, "launchctl", "kickstart", "-k", target)
	return err
}

// PIDOnPort implements ports.ProcessSupervisor. lsof exits 1 when nothing
// listens on the port; that is a clean "no pid", not an error.
func (l *Launchd) PIDOnPort(ctx context.Context, port int) (int, error) {
	out, err := l.run(ctx, "lsof", "-ti", fmt.Sprintf("tcp:%d", port), "-sTCP:LISTEN")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return 0, nil
		}
		return 0, err
	}
	first := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	if first == "" {
		return 0, nil
	}
	pid, convErr := strconv.Atoi(first)
	if convErr != nil {
		return 0, fmt.Errorf("unexpected lsof output %q", first)
	}
	return pid, nil
}

// Terminate implements ports.ProcessSupervisor.
func (l *Launchd) Terminate(_ context.Context, pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

// Alive implements ports.ProcessSupervisor. Signal 0 probes existence;
// EPERM still means the process exists.
func (l *Launchd) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

func (l *Launchd) run(ctx context.Context, bin string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	// The context kill only reaches the direct child; WaitDelay bounds the
	// pipe wait when a descendant it forked is still holding stdout/stderr.
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	l.logger.Debug("supervisor command", map[string]interface{}{
		"bin":  bin,
		"args": args,
		"ok":   err == nil,
	})
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Preserve the exit error so callers can inspect the code.
			return stdout.String(), exitErr
		}
		return stdout.String(), fmt.Errorf("%s: %w", bin, err)
	}
	return stdout.String(), nil
}

var _ ports.ProcessSupervisor = (*Launchd)(nil)
