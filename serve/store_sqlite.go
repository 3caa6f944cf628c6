package serve

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded API request: a script analysis or a DSL generation.
type Run struct {
	RunID      string    `json:"run_id"`
	Kind       string    `json:"kind"` // "analyze" or "generate"
	Model      string    `json:"model"`
	Input      string    `json:"input"`
	Output     string    `json:"output"`
	OK         bool      `json:"ok"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists run history.
type Store interface {
	Init() error
	SaveRun(run Run) error
	RecentRuns(limit int) ([]Run, error)
	Close() error
}

// SQLiteStore implements Store using modernc.org/sqlite (pure Go).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Init creates the schema tables.
func (s *SQLiteStore) Init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id     TEXT NOT NULL UNIQUE,
		kind       TEXT NOT NULL,
		model      TEXT NOT NULL DEFAULT '',
		input      TEXT NOT NULL DEFAULT '',
		output     TEXT NOT NULL DEFAULT '',
		ok          INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun records a completed request.
func (s *SQLiteStore) SaveRun(run Run) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, kind, model, input, output, ok, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Kind, run.Model, run.Input, run.Output, run.OK, run.DurationMS, run.CreatedAt,
	)
	return err
}

// RecentRuns returns the newest runs, most recent first.
func (s *SQLiteStore) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT run_id, kind, model, input, output, ok, duration_ms, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Kind, &r.Model, &r.Input, &r.Output, &r.OK, &r.DurationMS, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
