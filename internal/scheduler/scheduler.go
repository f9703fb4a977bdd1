package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sanitycheck/internal/domain"
)

// Trigger starts one full run; *service.Service implements it.
type Trigger interface {
	TriggerRun(ctx context.Context) (*domain.RunReport, error)
}

// Scheduler triggers a run on a fixed interval. Runs never overlap: the
// next tick is only handled after the previous run returned.
type Scheduler struct {
	Logger   *zap.Logger
	Trigger  Trigger
	Interval time.Duration
	Timeout  time.Duration
}

func New(logger *zap.Logger, t Trigger, interval, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval < 0 {
		interval = 0
	}
	return &Scheduler{Logger: logger, Trigger: t, Interval: interval, Timeout: timeout}
}

// Run does an immediate pass, then one per tick. Stops when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	if s.Interval == 0 {
		// disabled
		s.Logger.Info("scheduler_disabled")
		return
	}
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("scheduler_stopped")
			return
		case <-t.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	rep, err := s.Trigger.TriggerRun(ctx)
	if err != nil {
		s.Logger.Warn("scheduled_run_error", zap.Error(err))
		return
	}
	s.Logger.Info("scheduled_run",
		zap.String("run_id", rep.RunID),
		zap.Int("probes", len(rep.Report)),
		zap.Int("failed", rep.Failed()),
	)
}
