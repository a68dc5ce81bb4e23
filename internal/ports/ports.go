// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The heal checkers and the doctor depend only on these contracts; concrete
// adapters for the container runtime, the process supervisor, the filesystem
// and the heal-log stores live in the infrastructure layer. Keeping the
// collaborators typed (container state enum, HTTP status code, process id)
// is what makes every checker testable with fakes.
package ports

import (
	"context"
	"time"

	"github.com/opsbay/caretaker/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.caretaker/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ContainerRuntime is the container engine the graph database runs under.
type ContainerRuntime interface {
	// Ping reports whether the runtime daemon is reachable at all.
	Ping(ctx context.Context) error
	// Status returns the typed state of the named container.
	// A container the runtime does not know about is ContainerMissing.
	Status(ctx context.Context, name string) (domain.ContainerState, error)
	// Start starts the named container.
	Start(ctx context.Context, name string) error
	// Prune asks the runtime to garbage-collect unused data.
	Prune(ctx context.Context) error
}

// GatewayProber checks the gateway's HTTP health endpoint. Probe returns the
// HTTP status code, or 0 when no connection could be made at all.
type GatewayProber interface {
	Probe(ctx context.Context) int
}

// ProcessSupervisor fronts the host service manager (launchd).
type ProcessSupervisor interface {
	// Kickstart restarts the service registered under label.
	Kickstart(ctx context.Context, label string) error
	// PIDOnPort returns the pid listening on the TCP port, or 0 when none is.
	PIDOnPort(ctx context.Context, port int) (int, error)
	// Terminate sends a termination signal to pid.
	Terminate(ctx context.Context, pid int) error
	// Alive reports whether pid refers to a live process.
	Alive(pid int) bool
}

// DiskManager measures utilization of the monitored filesystem and performs
// the cleanup actions of the disk checker.
type DiskManager interface {
	Usage(ctx context.Context) (domain.DiskUsage, error)
	// RemoveRotatedLogs deletes compressed rotated log files and returns how
	// many were removed.
	RemoveRotatedLogs(ctx context.Context) (int, error)
	// RemoveOldSessions deletes session artifacts older than maxAge and
	// returns how many were removed.
	RemoveOldSessions(ctx context.Context, maxAge time.Duration) (int, error)
}

// LockScanner enumerates and removes stale lock files.
type LockScanner interface {
	// StaleCandidates lists lock files under root older than maxAge.
	StaleCandidates(ctx context.Context, root string, maxAge time.Duration) ([]domain.LockFile, error)
	Remove(path string) error
}

// HealLogStore persists the structured heal log (heal-log.json) and its
// one-line history projection (heal-history.log) in lockstep.
type HealLogStore interface {
	// Init creates the health-state directory if absent and seeds the log with
	// an empty list when missing or empty. It never truncates existing entries.
	Init() error
	// Append writes one entry to both files, atomically per entry.
	Append(entry domain.HealLogEntry) error
	// Entries loads the full structured log.
	Entries() ([]domain.HealLogEntry, error)
}

// HealHistoryRepository is the queryable mirror of heal attempts used by the
// history command. The file store stays the source of truth; repository
// failures never fail a heal run.
type HealHistoryRepository interface {
	Save(entry domain.HealLogEntry) error
	Records(limit int, search string) ([]domain.HealLogEntry, error)
	Clear() error
	ExportJSON(dest string) error
}

// Reporter mirrors every heal decision point on the console in real time.
// Wait blocks for the settle duration while keeping the user informed.
type Reporter interface {
	Banner(title string)
	Check(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Heal(format string, args ...interface{})
	OK(format string, args ...interface{})
	Fail(format string, args ...interface{})
	Wait(ctx context.Context, d time.Duration, format string, args ...interface{})
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
