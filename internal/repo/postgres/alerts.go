package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hamed0406/sanitycheck/internal/repo"
)

func (s *Store) Get(ctx context.Context, description string) (*repo.AlertRecord, error) {
	const q = `SELECT last_pass, last_sent_at FROM sanity_alerts WHERE description=$1`
	r := repo.AlertRecord{Description: description}
	err := s.pool.QueryRow(ctx, q, description).Scan(&r.LastPass, &r.LastSentAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return &r, nil
}

func (s *Store) Set(ctx context.Context, description string, lastPass bool, sentAt time.Time) error {
	const q = `
		INSERT INTO sanity_alerts (description, last_pass, last_sent_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (description)
		DO UPDATE SET last_pass=EXCLUDED.last_pass,
		              last_sent_at=COALESCE(EXCLUDED.last_sent_at, sanity_alerts.last_sent_at)
	`
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	if _, err := s.pool.Exec(ctx, q, description, lastPass, ts); err != nil {
		return fmt.Errorf("set alert: %w", err)
	}
	return nil
}
