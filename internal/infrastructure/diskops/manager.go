// Package diskops measures disk utilization and performs the disk checker's
// cleanup actions.
package diskops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/opsbay/caretaker/internal/domain"
	"github.com/opsbay/caretaker/internal/ports"
)

// Manager implements ports.DiskManager against the local filesystem.
type Manager struct {
	// Root is the mount whose utilization is monitored.
	Root string
	// LogDir holds compressed rotated logs (*.gz).
	LogDir string
	// SessionDir holds session artifact files cleaned up by age.
	SessionDir string

	logger ports.Logger
}

// NewManager builds a disk manager for the configured directories.
func NewManager(root, logDir, sessionDir string, log ports.Logger) *Manager {
	return &Manager{Root: root, LogDir: logDir, SessionDir: sessionDir, logger: log}
}

// Usage implements ports.DiskManager via statfs.
func (m *Manager) Usage(context.Context) (domain.DiskUsage, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(m.Root, &st); err != nil {
		return domain.DiskUsage{}, fmt.Errorf("statfs %s: %w", m.Root, err)
	}
	total := st.Blocks * uint64(st.Bsize)
	if total == 0 {
		return domain.DiskUsage{}, fmt.Errorf("statfs %s: zero total blocks", m.Root)
	}
	free := st.Bavail * uint64(st.Bsize)
	used := total - free
	return domain.DiskUsage{
		Percent:    int(used * 100 / total),
		UsedBytes:  used,
		TotalBytes: total,
	}, nil
}

// RemoveRotatedLogs implements ports.DiskManager. Compressed rotated logs
// are identified by the *.gz naming convention.
func (m *Manager) RemoveRotatedLogs(ctx context.Context) (int, error) {
	matches, err := filepath.Glob(filepath.Join(m.LogDir, "*.gz"))
	if err != nil {
		return 0, fmt.Errorf("glob rotated logs: %w", err)
	}
	return m.removeAll(ctx, matches)
}

// RemoveOldSessions implements ports.DiskManager.
func (m *Manager) RemoveOldSessions(ctx context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(m.SessionDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read session dir: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	var victims []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			victims = append(victims, filepath.Join(m.SessionDir, entry.Name()))
		}
	}
	return m.removeAll(ctx, victims)
}

// removeAll deletes each path, keeping count and returning the first error
// after trying everything.
func (m *Manager) removeAll(ctx context.Context, paths []string) (int, error) {
	removed := 0
	var firstErr error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := os.Remove(path); err != nil {
			m.logger.Warn("cleanup remove failed", map[string]interface{}{"path": path, "error": err.Error()})
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}

var _ ports.DiskManager = (*Manager)(nil)
