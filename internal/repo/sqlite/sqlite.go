package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/hamed0406/sanitycheck/internal/domain"
	"github.com/hamed0406/sanitycheck/internal/repo"
)

var _ repo.ResultStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS sanity_tests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	description TEXT NOT NULL,
	result TEXT NOT NULL,
	error TEXT
);
CREATE INDEX IF NOT EXISTS idx_sanity_tests_run ON sanity_tests(run_id, id);
`

// Store is a SQLite-backed result store. SQLite allows a single writer,
// so the pool is capped at one connection and calls serialize on it.
type Store struct {
	db   *sql.DB
	path string
}

func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Path() string { return s.path }

func (s *Store) Append(ctx context.Context, e *domain.ReportEntry) error {
	if err := e.Valid(); err != nil {
		return err
	}
	var errText sql.NullString
	if e.Error != nil {
		errText = sql.NullString{String: *e.Error, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sanity_tests (run_id, description, result, error) VALUES (?, ?, ?, ?)`,
		e.RunID, e.Description, string(e.Result), errText)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (s *Store) QueryByRun(ctx context.Context, runID string) ([]domain.ReportEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, description, result, error FROM sanity_tests WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	out := []domain.ReportEntry{}
	for rows.Next() {
		var (
			e       domain.ReportEntry
			result  string
			errText sql.NullString
		)
		if err := rows.Scan(&e.RunID, &e.Description, &result, &errText); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Result = domain.Result(result)
		if errText.Valid {
			msg := errText.String
			e.Error = &msg
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
