package runner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/sanitycheck/internal/domain"
	"github.com/hamed0406/sanitycheck/internal/probe"
	"github.com/hamed0406/sanitycheck/internal/repo"
)

// StorageError means a report entry could not be persisted. It aborts the
// run: every entry before it is durable, nothing after it was attempted.
type StorageError struct {
	RunID       string
	Description string
	Err         error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("persist result for %q (run %s): %v", e.Description, e.RunID, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Runner executes a probe battery sequentially and records one entry per
// probe. It holds no per-run state, so one Runner serves concurrent runs.
type Runner struct {
	Logger   *zap.Logger
	Prober   probe.Prober
	Store    repo.ResultStore
	NewRunID func() string
}

func New(logger *zap.Logger, p probe.Prober, store repo.ResultStore) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Logger: logger, Prober: p, Store: store, NewRunID: uuid.NewString}
}

// Execute runs battery in declaration order. Each entry is persisted before
// the next probe starts. Probe failures never abort the run; a storage
// failure does, returning the partial report and a *StorageError.
func (r *Runner) Execute(ctx context.Context, battery []probe.Spec) (*domain.RunReport, error) {
	newID := r.NewRunID
	if newID == nil {
		newID = uuid.NewString
	}
	report := &domain.RunReport{
		RunID:  newID(),
		Report: make([]domain.ReportEntry, 0, len(battery)),
	}
	log := r.Logger.With(zap.String("run_id", report.RunID))
	log.Info("run_started", zap.Int("probes", len(battery)))

	for _, spec := range battery {
		entry := r.evaluate(ctx, report.RunID, spec)
		report.Report = append(report.Report, entry)

		if entry.Result == domain.Pass {
			log.Info("probe_passed", zap.String("description", spec.Description))
		} else {
			log.Info("probe_failed",
				zap.String("description", spec.Description),
				zap.String("error", entry.ErrorText()),
			)
		}

		if err := r.Store.Append(ctx, &entry); err != nil {
			log.Error("store_append_error",
				zap.String("description", spec.Description),
				zap.Error(err),
			)
			return report, &StorageError{RunID: report.RunID, Description: spec.Description, Err: err}
		}
	}

	log.Info("run_finished",
		zap.Int("probes", len(report.Report)),
		zap.Int("failed", report.Failed()),
	)
	return report, nil
}

func (r *Runner) evaluate(ctx context.Context, runID string, spec probe.Spec) domain.ReportEntry {
	resp, err := r.Prober.Probe(ctx, spec.Method, spec.Target)
	if err != nil {
		return domain.Failed(runID, spec.Description, err.Error())
	}

	if resp.StatusCode != spec.ExpectedStatus {
		return domain.Failed(runID, spec.Description,
			fmt.Sprintf("Expected status %d, but got %d", spec.ExpectedStatus, resp.StatusCode))
	}

	switch spec.Kind {
	case probe.KindValidating:
		if spec.Validator == nil {
			return domain.Failed(runID, spec.Description, "probe has no validator configured")
		}
		out := spec.Validator.Validate(ctx, resp.Body)
		if out.Success {
			return domain.Passed(runID, spec.Description)
		}
		msg := out.Error
		if msg == "" {
			msg = "validation failed"
		}
		return domain.Failed(runID, spec.Description, msg)
	default:
		return domain.Passed(runID, spec.Description)
	}
}
