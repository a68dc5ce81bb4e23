package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{})        {}
func (nopLogger) Info(string, map[string]interface{})         {}
func (nopLogger) Warn(string, map[string]interface{})         {}
func (nopLogger) Error(string, error, map[string]interface{}) {}

func TestAliveOwnProcess(t *testing.T) {
	l := NewLaunchd(time.Second, nopLogger{})
	if !l.Alive(os.Getpid()) {
		t.Fatal("the test's own pid must be alive")
	}
}

func TestAliveRejectsNonPositivePIDs(t *testing.T) {
	l := NewLaunchd(time.Second, nopLogger{})
	for _, pid := range []int{0, -1} {
		if l.Alive(pid) {
			t.Errorf("Alive(%d) = true, want false", pid)
		}
	}
}

func TestRunIsBoundedByTimeout(t *testing.T) {
	// A hung tool that forked a child holding stdout must not stall the
	// caller past the per-call timeout.
	bin := filepath.Join(t.TempDir(), "hung-tool")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nsleep 5 &\nwait\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	l := NewLaunchd(100*time.Millisecond, nopLogger{})
	start := time.Now()
	_, err := l.run(context.Background(), bin)
	if err == nil {
		t.Fatal("a hung tool must time out, not succeed")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("run took %s, the per-call timeout did not bound it", elapsed)
	}
}

func TestAliveDeadProcess(t *testing.T) {
	l := NewLaunchd(time.Second, nopLogger{})
	// Max pid on Linux defaults to 4194304; this value cannot be allocated.
	if l.Alive(1 << 30) {
		t.Fatal("an unallocatable pid must not be alive")
	}
}
