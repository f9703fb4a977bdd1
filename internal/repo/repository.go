package repo

import (
	"context"

	"github.com/hamed0406/sanitycheck/internal/domain"
)

// ResultStore is the append-only audit trail of report entries.
// Implementations must tolerate concurrent appends from different runs.
type ResultStore interface {
	Append(ctx context.Context, e *domain.ReportEntry) error
	// QueryByRun returns every entry recorded for runID in insertion
	// order. An unknown run yields an empty slice and a nil error.
	QueryByRun(ctx context.Context, runID string) ([]domain.ReportEntry, error)
}
