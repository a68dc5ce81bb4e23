package heal

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/opsbay/caretaker/internal/domain"
	"github.com/opsbay/caretaker/internal/ports"
)

// LockChecker removes lock files whose owning process is no longer alive.
// Liveness is authoritative: a live owner keeps its lock regardless of age.
type LockChecker struct {
	Scanner    ports.LockScanner
	Supervisor ports.ProcessSupervisor
	Reporter   ports.Reporter

	Root   string
	MaxAge time.Duration
}

// Name implements Checker.
func (l *LockChecker) Name() string { return "locks" }

// Run enumerates lock files older than MaxAge and deletes the ones without a
// live owner. Any deletion failure downgrades the result to partial.
func (l *LockChecker) Run(ctx context.Context) domain.CheckOutcome {
	l.Reporter.Check("stale locks under %s", l.Root)
	started := time.Now()

	candidates, err := l.Scanner.StaleCandidates(ctx, l.Root, l.MaxAge)
	if err != nil {
		l.Reporter.Fail("lock enumeration failed: %v", err)
		return outcome(l.Name(), false, newEntry(started,
			"locks_stale",
			fmt.Sprintf("lock enumeration under %s failed: %v", l.Root, err),
			"none",
			domain.HealFailed,
			"not verified; lock state unknown",
		))
	}
	if len(candidates) == 0 {
		l.Reporter.OK("no lock files older than %s", l.MaxAge)
		return pass(l.Name())
	}

	l.Reporter.Warn("%d lock files older than %s", len(candidates), l.MaxAge)
	removed, kept := 0, 0
	var failures []string
	for _, lock := range candidates {
		if lock.OwnerPID > 0 && l.Supervisor.Alive(lock.OwnerPID) {
			l.Reporter.Warn("keeping %s: owner pid %d is alive", filepath.Base(lock.Path), lock.OwnerPID)
			kept++
			continue
		}
		l.Reporter.Heal("removing %s", filepath.Base(lock.Path))
		if err := l.Scanner.Remove(lock.Path); err != nil {
			l.Reporter.Warn("remove %s: %v", lock.Path, err)
			failures = append(failures, fmt.Sprintf("%s: %v", filepath.Base(lock.Path), err))
			continue
		}
		removed++
	}

	diagnosis := fmt.Sprintf("%d lock files exceeded %s age threshold", len(candidates), l.MaxAge)
	action := fmt.Sprintf("removed %d lock files, kept %d with live owners", removed, kept)
	if len(failures) > 0 {
		l.Reporter.Fail("%d lock removals failed", len(failures))
		return outcome(l.Name(), false, newEntry(started,
			"locks_stale",
			diagnosis+"; failures: "+strings.Join(failures, "; "),
			action,
			domain.HealPartial,
			fmt.Sprintf("%d of %d removals succeeded", removed, removed+len(failures)),
		))
	}

	l.Reporter.OK("stale locks cleared (%d removed, %d kept)", removed, kept)
	return outcome(l.Name(), true, newEntry(started,
		"locks_stale",
		diagnosis,
		action,
		domain.HealSuccess,
		"all removals succeeded; live owners untouched",
	))
}
