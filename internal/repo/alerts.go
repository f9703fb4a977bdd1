package repo

import (
	"context"
	"time"
)

// AlertRecord holds the last result seen for a probe description and the
// last time a notification went out for it (used for cooldown).
type AlertRecord struct {
	Description string
	LastPass    bool
	LastSentAt  *time.Time
}

// AlertStore persists per-probe alert state across runs.
type AlertStore interface {
	// Get returns nil, nil if there's no record yet.
	Get(ctx context.Context, description string) (*AlertRecord, error)
	// Set upserts the record. If sentAt.IsZero() the previous send time is kept.
	Set(ctx context.Context, description string, lastPass bool, sentAt time.Time) error
}
