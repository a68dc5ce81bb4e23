package locks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeLock(t *testing.T, dir, name, content string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("age %s: %v", name, err)
	}
	return path
}

func TestStaleCandidatesFiltersByAgeAndSuffix(t *testing.T) {
	dir := t.TempDir()
	stale := writeLock(t, dir, "ingest.lock", "1234\n", 2*time.Hour)
	writeLock(t, dir, "fresh.lock", "5678\n", 10*time.Minute)
	writeLock(t, dir, "notes.txt", "not a lock", 2*time.Hour)

	scanner := NewScanner(".lock")
	candidates, err := scanner.StaleCandidates(context.Background(), dir, time.Hour)
	if err != nil {
		t.Fatalf("StaleCandidates: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("candidates = %d, want only the aged .lock file", len(candidates))
	}
	if candidates[0].Path != stale {
		t.Fatalf("candidate path = %q, want %q", candidates[0].Path, stale)
	}
	if candidates[0].OwnerPID != 1234 {
		t.Fatalf("owner pid = %d, want 1234 from the first line", candidates[0].OwnerPID)
	}
}

func TestStaleCandidatesUnparseablePIDIsZero(t *testing.T) {
	dir := t.TempDir()
	writeLock(t, dir, "empty.lock", "", 2*time.Hour)
	writeLock(t, dir, "garbage.lock", "acquired by worker\n", 2*time.Hour)
	writeLock(t, dir, "negative.lock", "-5\n", 2*time.Hour)

	scanner := NewScanner(".lock")
	candidates, err := scanner.StaleCandidates(context.Background(), dir, time.Hour)
	if err != nil {
		t.Fatalf("StaleCandidates: %v", err)
	}

	if len(candidates) != 3 {
		t.Fatalf("candidates = %d, want 3", len(candidates))
	}
	for _, lock := range candidates {
		if lock.OwnerPID != 0 {
			t.Errorf("%s: owner pid = %d, want 0 for unparseable content",
				filepath.Base(lock.Path), lock.OwnerPID)
		}
	}
}

func TestStaleCandidatesMissingRootIsNotAnError(t *testing.T) {
	scanner := NewScanner(".lock")
	candidates, err := scanner.StaleCandidates(context.Background(),
		filepath.Join(t.TempDir(), "does-not-exist"), time.Hour)
	if err != nil {
		t.Fatalf("missing root should yield no candidates, got error: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("candidates = %d, want 0", len(candidates))
	}
}

func TestStaleCandidatesSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested.lock")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	stamp := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(sub, stamp, stamp); err != nil {
		t.Fatalf("age dir: %v", err)
	}

	scanner := NewScanner(".lock")
	candidates, err := scanner.StaleCandidates(context.Background(), dir, time.Hour)
	if err != nil {
		t.Fatalf("StaleCandidates: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("a directory matched the lock suffix: %+v", candidates)
	}
}

func TestRemoveDeletesLockFile(t *testing.T) {
	dir := t.TempDir()
	path := writeLock(t, dir, "stale.lock", "99999\n", 2*time.Hour)

	scanner := NewScanner(".lock")
	if err := scanner.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("lock file still present after Remove: %v", err)
	}
}
