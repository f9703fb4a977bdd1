package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/sanitycheck/internal/domain"
	"github.com/hamed0406/sanitycheck/internal/repo"
)

// Store keeps report entries in process memory, in append order.
type Store struct {
	mu      sync.RWMutex
	entries []domain.ReportEntry
	byRun   map[string][]int
}

func New() *Store {
	return &Store{
		entries: make([]domain.ReportEntry, 0, 128),
		byRun:   make(map[string][]int),
	}
}

func (m *Store) Append(ctx context.Context, e *domain.ReportEntry) error {
	if err := e.Valid(); err != nil {
		return err
	}
	cp := *e
	if e.Error != nil {
		msg := *e.Error
		cp.Error = &msg
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byRun[cp.RunID] = append(m.byRun[cp.RunID], len(m.entries))
	m.entries = append(m.entries, cp)
	return nil
}

func (m *Store) QueryByRun(ctx context.Context, runID string) ([]domain.ReportEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.byRun[runID]
	out := make([]domain.ReportEntry, 0, len(idx))
	for _, i := range idx {
		out = append(out, m.entries[i])
	}
	return out, nil
}

// Alerts is an in-memory repo.AlertStore.
type Alerts struct {
	mu sync.Mutex
	m  map[string]repo.AlertRecord
}

func NewAlerts() *Alerts {
	return &Alerts{m: make(map[string]repo.AlertRecord)}
}

func (a *Alerts) Get(ctx context.Context, description string) (*repo.AlertRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.m[description]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (a *Alerts) Set(ctx context.Context, description string, lastPass bool, sentAt time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec := repo.AlertRecord{Description: description, LastPass: lastPass}
	if prev, ok := a.m[description]; ok {
		rec.LastSentAt = prev.LastSentAt
	}
	if !sentAt.IsZero() {
		ts := sentAt
		rec.LastSentAt = &ts
	}
	a.m[description] = rec
	return nil
}
