package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/sanitycheck/internal/domain"
	"github.com/hamed0406/sanitycheck/internal/probe"
	"github.com/hamed0406/sanitycheck/internal/repo"
)

// ErrNotFound is returned by FetchRun when no entries exist for a run.
var ErrNotFound = errors.New("no results found for this run ID")

// Executor runs a battery; *runner.Runner implements it.
type Executor interface {
	Execute(ctx context.Context, battery []probe.Spec) (*domain.RunReport, error)
}

// Observer is told about every completed run; *alert.Alerter implements it.
type Observer interface {
	Observe(ctx context.Context, rep *domain.RunReport)
}

// Service is the boundary the HTTP layer and the scheduler talk to.
type Service struct {
	Logger   *zap.Logger
	Runner   Executor
	Store    repo.ResultStore
	Battery  []probe.Spec
	Observer Observer // optional
}

func New(logger *zap.Logger, r Executor, store repo.ResultStore, battery []probe.Spec) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Logger: logger, Runner: r, Store: store, Battery: battery}
}

// TriggerRun executes the full battery once.
func (s *Service) TriggerRun(ctx context.Context) (*domain.RunReport, error) {
	rep, err := s.Runner.Execute(ctx, s.Battery)
	if err != nil {
		return rep, fmt.Errorf("run: %w", err)
	}
	if s.Observer != nil {
		s.Observer.Observe(ctx, rep)
	}
	return rep, nil
}

// FetchRun returns every persisted entry for runID, or ErrNotFound.
func (s *Service) FetchRun(ctx context.Context, runID string) ([]domain.ReportEntry, error) {
	entries, err := s.Store.QueryByRun(ctx, runID)
	if err != nil {
		s.Logger.Warn("fetch_run_error", zap.String("run_id", runID), zap.Error(err))
		return nil, fmt.Errorf("fetch run %s: %w", runID, err)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return entries, nil
}
