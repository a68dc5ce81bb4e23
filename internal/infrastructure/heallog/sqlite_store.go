package heallog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/opsbay/caretaker/internal/domain"
	"github.com/opsbay/caretaker/internal/ports"
)

const historyDBName = "history.db"

// SQLiteStore mirrors heal attempts into a SQLite database so the history
// command can list and search them. It is never the source of truth; a heal
// run tolerates its failure.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) <stateDir>/history.db.
func NewSQLiteStore(stateDir string) *SQLiteStore {
	path := filepath.Join(stateDir, historyDBName)
	_ = os.MkdirAll(stateDir, domain.DirectoryPermissions)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path}
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return &SQLiteStore{path: path}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS heal_attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT,
		run_id TEXT,
		issue TEXT,
		diagnosis TEXT,
		action TEXT,
		result TEXT,
		verify TEXT,
		duration_ms INTEGER
	);`)
	return err
}

// Save implements ports.HealHistoryRepository.
func (s *SQLiteStore) Save(entry domain.HealLogEntry) error {
	if s.db == nil {
		return fmt.Errorf("history database unavailable at %s", s.path)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO heal_attempts
		(timestamp, run_id, issue, diagnosis, action, result, verify, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Timestamp.UTC().Format(domain.TimestampFormat),
		entry.RunID,
		entry.Issue,
		entry.Diagnosis,
		entry.Action,
		string(entry.Result),
		entry.Verify,
		entry.DurationMS,
	)
	return err
}

// Records implements ports.HealHistoryRepository (newest first).
func (s *SQLiteStore) Records(limit int, search string) ([]domain.HealLogEntry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("history database unavailable at %s", s.path)
	}
	builder := strings.Builder{}
	builder.WriteString("SELECT timestamp, run_id, issue, diagnosis, action, result, verify, duration_ms FROM heal_attempts")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE issue LIKE ? OR action LIKE ? OR diagnosis LIKE ?")
		like := "%" + search + "%"
		args = append(args, like, like, like)
	}
	builder.WriteString(" ORDER BY datetime(timestamp) DESC, id DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.HealLogEntry
	for rows.Next() {
		var entry domain.HealLogEntry
		var ts, result string
		if err := rows.Scan(&ts, &entry.RunID, &entry.Issue, &entry.Diagnosis,
			&entry.Action, &result, &entry.Verify, &entry.DurationMS); err != nil {
			return nil, err
		}
		if t, err := time.Parse(domain.TimestampFormat, ts); err == nil {
			entry.Timestamp = t
		}
		entry.Result = domain.HealResult(result)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Clear implements ports.HealHistoryRepository.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return fmt.Errorf("history database unavailable at %s", s.path)
	}
	_, err := s.db.Exec("DELETE FROM heal_attempts")
	return err
}

// ExportJSON implements ports.HealHistoryRepository, writing one JSON object
// per line.
func (s *SQLiteStore) ExportJSON(dest string) error {
	entries, err := s.Records(0, "")
	if err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}

var _ ports.HealHistoryRepository = (*SQLiteStore)(nil)
