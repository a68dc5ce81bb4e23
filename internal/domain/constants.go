package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// LogFilePermissions is the permission for heal log files (rw-r--r--)
	LogFilePermissions = 0o644
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Heal timing defaults. Settle periods are fixed waits issued after a
// restart before re-checking status.
const (
	// DefaultContainerSettle is the wait after restarting the container
	DefaultContainerSettle = 10 * time.Second
	// DefaultGatewaySettle is the wait after kickstarting the gateway
	DefaultGatewaySettle = 5 * time.Second
	// DefaultKillSettle is the wait after terminating a bound process
	DefaultKillSettle = 2 * time.Second
	// DefaultProbeTimeout bounds the gateway health probe
	DefaultProbeTimeout = 5 * time.Second
	// DefaultCommandTimeout bounds container runtime and supervisor shell-outs
	DefaultCommandTimeout = 15 * time.Second
)

// Disk thresholds. The recovery target is deliberately stricter than the
// trigger so a fix must push usage meaningfully below the trigger point.
const (
	// DefaultDiskTriggerPercent is the high-water utilization that starts cleanup
	DefaultDiskTriggerPercent = 90
	// DefaultDiskRecoveryPercent is the target a fix must reach to count as success
	DefaultDiskRecoveryPercent = 85
	// DefaultSessionMaxAgeDays is how old session artifacts must be before cleanup
	DefaultSessionMaxAgeDays = 30
)

// Lock sweep defaults
const (
	// DefaultLockMaxAge is how old a lock file must be to become a stale candidate
	DefaultLockMaxAge = 60 * time.Minute
	// DefaultLockSuffix is the lock file naming convention
	DefaultLockSuffix = ".lock"
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
	// DefaultHistorySearchLimit is the default number of search results to return
	DefaultHistorySearchLimit = 50
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
