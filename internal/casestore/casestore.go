// Package casestore keeps the history of trace investigations in a local
// SQLite database.
package casestore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Case is one scanned terminal group.
type Case struct {
	ReportID     string
	Trace        string
	TerminalID   string
	Outcome      string
	OutputPath   string // empty when no report file was written
	Digest       string
	Investigator string
	CreatedAt    time.Time
}

// ErrUnknownCase is returned when a report id has no recorded case.
var ErrUnknownCase = errors.New("no case recorded for report")

// Note is an investigator remark attached to a case.
type Note struct {
	ReportID  string
	Message   string
	CreatedAt time.Time
}

// Store is the case history database.
type Store struct {
	db *sql.DB
	mu sync.Mutex // serializes writes
}

// DefaultPath returns $XDG_DATA_HOME/ejtrace/cases.db, falling back to
// ~/.local/share/ejtrace/cases.db.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "ejtrace", "cases.db"), nil
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open case history: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("case history ping failed: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying case history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends c to the history.
func (s *Store) Record(ctx context.Context, c Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cases (report_id, trace, terminal_id, outcome, output_path, digest, investigator, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ReportID, c.Trace, c.TerminalID, c.Outcome, c.OutputPath, c.Digest, c.Investigator,
		c.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording case %s: %w", c.ReportID, err)
	}
	return nil
}

const selectCases = `
	SELECT report_id, trace, terminal_id, outcome, output_path, digest, investigator, created_at
	FROM cases`

// List returns up to limit cases, newest first. A limit of 0 or less
// returns every case.
func (s *Store) List(ctx context.Context, limit int) ([]Case, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, selectCases+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}
	return scanCases(rows)
}

// ByTrace returns every case recorded for trace, newest first.
func (s *Store) ByTrace(ctx context.Context, trace string) ([]Case, error) {
	rows, err := s.db.QueryContext(ctx, selectCases+` WHERE trace = ? ORDER BY created_at DESC, id DESC`, trace)
	if err != nil {
		return nil, fmt.Errorf("listing cases for trace %s: %w", trace, err)
	}
	return scanCases(rows)
}

func scanCases(rows *sql.Rows) ([]Case, error) {
	defer rows.Close()

	var cases []Case
	for rows.Next() {
		var c Case
		var created string
		if err := rows.Scan(&c.ReportID, &c.Trace, &c.TerminalID, &c.Outcome,
			&c.OutputPath, &c.Digest, &c.Investigator, &created); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("case %s: bad created_at %q: %w", c.ReportID, created, err)
		}
		c.CreatedAt = t
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return cases, nil
}

// AddNote attaches message to the case of reportID. Unique prefixes of the
// report id are accepted.
func (s *Store) AddNote(ctx context.Context, reportID, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.resolve(ctx, reportID)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notes (report_id, message, created_at) VALUES (?, ?, ?)`,
		id, message, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("adding note to %s: %w", id, err)
	}
	return id, nil
}

// resolve expands a report id prefix to the full id.
func (s *Store) resolve(ctx context.Context, prefix string) (string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT report_id FROM cases WHERE substr(report_id, 1, ?) = ? LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("looking up case %s: %w", prefix, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan failed: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("rows iteration error: %w", err)
	}
	switch {
	case prefix == "" || len(ids) == 0:
		return "", fmt.Errorf("%w %q", ErrUnknownCase, prefix)
	case len(ids) > 1:
		return "", fmt.Errorf("report id %q is ambiguous", prefix)
	}
	return ids[0], nil
}

// Notes returns the notes of reportID, oldest first.
func (s *Store) Notes(ctx context.Context, reportID string) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT report_id, message, created_at FROM notes WHERE report_id = ? ORDER BY id`, reportID)
	if err != nil {
		return nil, fmt.Errorf("listing notes for %s: %w", reportID, err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		var created string
		if err := rows.Scan(&n.ReportID, &n.Message, &created); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if n.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("note on %s: bad created_at %q: %w", reportID, created, err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return notes, nil
}
