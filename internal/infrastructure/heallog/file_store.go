// Package heallog persists heal attempts: a structured JSON log and a
// one-line history projection, plus a SQLite mirror for querying.
package heallog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/opsbay/caretaker/internal/domain"
	"github.com/opsbay/caretaker/internal/ports"
)

const (
	logFileName     = "heal-log.json"
	historyFileName = "heal-history.log"
)

// FileStore keeps heal-log.json (an ordered JSON array of entries, rewritten
// atomically per append) and heal-history.log (append-only text) in lockstep
// under the health-state directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a store rooted at the health-state directory.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Init implements ports.HealLogStore: it creates the directory and seeds the
// structured log with an empty array when the file is missing or empty. A
// non-empty log is never touched.
func (f *FileStore) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(f.dir, domain.DirectoryPermissions); err != nil {
		return err
	}
	path := f.logPath()
	info, err := os.Stat(path)
	if err == nil && info.Size() > 0 {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return f.writeAtomic(path, []byte("[]\n"))
}

// Append implements ports.HealLogStore. The whole array is rewritten through
// a temp file and rename so an interrupted write can never truncate the log.
func (f *FileStore) Append(entry domain.HealLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := f.writeAtomic(f.logPath(), append(data, '\n')); err != nil {
		return err
	}
	return f.appendHistoryLine(entry)
}

// Entries implements ports.HealLogStore.
func (f *FileStore) Entries() ([]domain.HealLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// LogPath returns the structured log location.
func (f *FileStore) LogPath() string { return f.logPath() }

// HistoryPath returns the history log location.
func (f *FileStore) HistoryPath() string { return filepath.Join(f.dir, historyFileName) }

func (f *FileStore) logPath() string { return filepath.Join(f.dir, logFileName) }

func (f *FileStore) load() ([]domain.HealLogEntry, error) {
	data, err := os.ReadFile(f.logPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var entries []domain.HealLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("heal log corrupt: %w", err)
	}
	return entries, nil
}

func (f *FileStore) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, logFileName+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), domain.LogFilePermissions); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (f *FileStore) appendHistoryLine(entry domain.HealLogEntry) error {
	file, err := os.OpenFile(f.HistoryPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.LogFilePermissions)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = fmt.Fprintln(file, entry.HistoryLine())
	return err
}

var _ ports.HealLogStore = (*FileStore)(nil)
