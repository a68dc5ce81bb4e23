// Package locks enumerates lock files for the stale-lock checker.
package locks

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/opsbay/caretaker/internal/domain"
	"github.com/opsbay/caretaker/internal/ports"
)

// Scanner finds lock files by suffix convention and reads the owning pid
// from their first line.
type Scanner struct {
	Suffix string
}

// NewScanner builds a scanner for the given lock suffix (e.g. ".lock").
func NewScanner(suffix string) *Scanner {
	if suffix == "" {
		suffix = domain.DefaultLockSuffix
	}
	return &Scanner{Suffix: suffix}
}

// StaleCandidates implements ports.LockScanner. A missing root directory
// yields no candidates rather than an error.
func (s *Scanner) StaleCandidates(ctx context.Context, root string, maxAge time.Duration) ([]domain.LockFile, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	cutoff := time.Now().Add(-maxAge)
	var candidates []domain.LockFile
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return candidates, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), s.Suffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(root, entry.Name())
		candidates = append(candidates, domain.LockFile{
			Path:     path,
			OwnerPID: s.ownerPID(path),
		})
	}
	return candidates, nil
}

// Remove implements ports.LockScanner.
func (s *Scanner) Remove(path string) error {
	return os.Remove(path)
}

// ownerPID reads the first line of the lock file; zero means no parseable pid.
func (s *Scanner) ownerPID(path string) int {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	if !sc.Scan() {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil || pid <= 0 {
		return 0
	}
	return pid
}

var _ ports.LockScanner = (*Scanner)(nil)
