package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/sanitycheck/internal/domain"
	"github.com/hamed0406/sanitycheck/internal/repo"
)

var _ repo.ResultStore = (*Store)(nil)
var _ repo.AlertStore = (*Store)(nil)

// Schema is the table layout the store expects. EnsureSchema applies it.
const Schema = `
CREATE TABLE IF NOT EXISTS sanity_tests (
  id          BIGSERIAL PRIMARY KEY,
  run_id      TEXT NOT NULL,
  description TEXT NOT NULL,
  result      TEXT NOT NULL CHECK (result IN ('Pass','Fail')),
  error       TEXT NULL
);

CREATE INDEX IF NOT EXISTS idx_sanity_tests_run ON sanity_tests (run_id, id);

CREATE TABLE IF NOT EXISTS sanity_alerts (
  description  TEXT PRIMARY KEY,
  last_pass    BOOLEAN NOT NULL,
  last_sent_at TIMESTAMPTZ NULL
);
`

// Store persists report entries through a pgx connection pool. The pool
// is owned by the caller via New/Close; it is never a process-wide handle.
type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// ---- ResultStore ----

func (s *Store) Append(ctx context.Context, e *domain.ReportEntry) error {
	if err := e.Valid(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sanity_tests
		   (run_id, description, result, error)
		 VALUES
		   ($1, $2, $3, $4)`,
		e.RunID, e.Description, string(e.Result), e.Error,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (s *Store) QueryByRun(ctx context.Context, runID string) ([]domain.ReportEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT run_id, description, result, error
		   FROM sanity_tests
		  WHERE run_id = $1
		  ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	out := []domain.ReportEntry{}
	for rows.Next() {
		var (
			e      domain.ReportEntry
			result string
		)
		if err := rows.Scan(&e.RunID, &e.Description, &result, &e.Error); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Result = domain.Result(result)
		out = append(out, e)
	}
	return out, rows.Err()
}
