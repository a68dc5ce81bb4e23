package domain

import (
	"fmt"
	"time"
)

// HealResult classifies the outcome of one remediation attempt.
type HealResult string

const (
	HealSuccess  HealResult = "success"
	HealFailed   HealResult = "failed"
	HealPartial  HealResult = "partial"
	HealSkipped  HealResult = "skipped"
	HealEscalate HealResult = "escalate"
)

// HealLogEntry is one immutable record of a remediation attempt. Checks that
// pass without taking action produce no entry.
type HealLogEntry struct {
	Timestamp  time.Time  `json:"timestamp"`
	RunID      string     `json:"run_id,omitempty"`
	Issue      string     `json:"issue"`
	Diagnosis  string     `json:"diagnosis"`
	Action     string     `json:"action"`
	Result     HealResult `json:"result"`
	Verify     string     `json:"verify"`
	DurationMS int64      `json:"duration_ms"`
}

// HistoryLine renders the one-line projection written to heal-history.log:
// timestamp | issue | action | result | duration in seconds, one decimal.
func (e HealLogEntry) HistoryLine() string {
	return fmt.Sprintf("%s | %s | %s | %s | %.1f",
		e.Timestamp.UTC().Format(TimestampFormat),
		e.Issue,
		e.Action,
		e.Result,
		float64(e.DurationMS)/1000.0,
	)
}

// CheckOutcome is the aggregator a checker hands back to the driver: a
// boolean verdict plus whatever entries the remediation path produced.
// Checkers never report errors past this boundary.
type CheckOutcome struct {
	Checker string
	OK      bool
	Entries []HealLogEntry
}

// RunReport collects the outcomes of one full heal run.
type RunReport struct {
	RunID     string
	StartedAt time.Time
	Outcomes  []CheckOutcome
}

// Overall is true iff every checker passed outright or was healed.
func (r RunReport) Overall() bool {
	for _, o := range r.Outcomes {
		if !o.OK {
			return false
		}
	}
	return true
}

// Unresolved counts checkers that could not be healed.
func (r RunReport) Unresolved() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.OK {
			n++
		}
	}
	return n
}

// ContainerState is the typed status reported by the container runtime.
type ContainerState string

const (
	ContainerRunning    ContainerState = "running"
	ContainerExited     ContainerState = "exited"
	ContainerCreated    ContainerState = "created"
	ContainerPaused     ContainerState = "paused"
	ContainerRestarting ContainerState = "restarting"
	ContainerDead       ContainerState = "dead"
	// ContainerMissing means the runtime has no container by that name at all.
	ContainerMissing ContainerState = "missing"
	ContainerUnknown ContainerState = "unknown"
)

// ParseContainerState maps a runtime status string to a typed state.
func ParseContainerState(raw string) ContainerState {
	switch ContainerState(raw) {
	case ContainerRunning, ContainerExited, ContainerCreated,
		ContainerPaused, ContainerRestarting, ContainerDead:
		return ContainerState(raw)
	default:
		return ContainerUnknown
	}
}

// DiskUsage reports filesystem utilization for the monitored mount.
type DiskUsage struct {
	Percent    int
	UsedBytes  uint64
	TotalBytes uint64
}

// LockFile is one stale-lock candidate. OwnerPID is zero when the first line
// of the file does not parse as a process id.
type LockFile struct {
	Path     string
	OwnerPID int
}
