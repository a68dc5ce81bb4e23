// Package heal implements the self-heal runner: a fixed battery of
// infrastructure checks, each with one bounded, idempotent repair attempt,
// recorded to an append-only structured log.
package heal

import (
	"context"
	"time"

	"github.com/opsbay/caretaker/internal/domain"
)

// Checker is one self-contained detect-and-heal unit for a single
// infrastructure concern. Run never panics and never returns an error;
// everything the driver needs is in the outcome.
type Checker interface {
	Name() string
	Run(ctx context.Context) domain.CheckOutcome
}

// newEntry stamps a heal log entry with a UTC second-precision timestamp and
// the elapsed duration since the remediation started.
func newEntry(started time.Time, issue, diagnosis, action string, result domain.HealResult, verify string) domain.HealLogEntry {
	return domain.HealLogEntry{
		Timestamp:  time.Now().UTC().Truncate(time.Second),
		Issue:      issue,
		Diagnosis:  diagnosis,
		Action:     action,
		Result:     result,
		Verify:     verify,
		DurationMS: time.Since(started).Milliseconds(),
	}
}

func pass(name string) domain.CheckOutcome {
	return domain.CheckOutcome{Checker: name, OK: true}
}

func outcome(name string, ok bool, entries ...domain.HealLogEntry) domain.CheckOutcome {
	return domain.CheckOutcome{Checker: name, OK: ok, Entries: entries}
}
