package alert

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sanitycheck/internal/domain"
	"github.com/hamed0406/sanitycheck/internal/notify"
	"github.com/hamed0406/sanitycheck/internal/repo"
)

type Config struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
}

// Alerter turns run reports into notifications when a probe changes state
// between runs. Probes are matched across runs by description.
type Alerter struct {
	log      *zap.Logger
	state    repo.AlertStore
	notifier notify.Notifier
	cfg      Config
	now      func() time.Time
}

func New(log *zap.Logger, state repo.AlertStore, n notify.Notifier, cfg Config) *Alerter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Alerter{log: log, state: state, notifier: n, cfg: cfg, now: time.Now}
}

// Observe records the outcome of every entry in rep and sends at most one
// notification per entry. Notification and state errors are logged only.
func (a *Alerter) Observe(ctx context.Context, rep *domain.RunReport) {
	now := a.now()
	for _, e := range rep.Report {
		pass := e.Result == domain.Pass
		rec, err := a.state.Get(ctx, e.Description)
		if err != nil {
			a.log.Warn("alert_state_error", zap.String("description", e.Description), zap.Error(err))
			continue
		}

		// First sighting counts as a change only when failing.
		stateChanged := (rec == nil && !pass) || (rec != nil && rec.LastPass != pass)

		// Cooldown only matters for failure alerts (suppresses flapping).
		cooled := true
		if rec != nil && rec.LastSentAt != nil {
			cooled = now.Sub(*rec.LastSentAt) >= a.cfg.Cooldown
		}

		failAlert := stateChanged && !pass && cooled
		recoveryAlert := stateChanged && pass && a.cfg.AlertOnRecovery

		sentAt := time.Time{}
		if failAlert || recoveryAlert {
			title := "🔴 Probe FAILING"
			if pass {
				title = "🟢 Probe RECOVERED"
			}
			text := fmt.Sprintf("Probe: %s\nRun: %s\nResult: %s", e.Description, rep.RunID, e.Result)
			if !pass {
				text += "\nError: " + e.ErrorText()
			}
			if err := a.notifier.Send(ctx, title, text); err != nil {
				a.log.Warn("alert_send_error", zap.String("description", e.Description), zap.Error(err))
			} else {
				sentAt = now
			}
		}

		if rec == nil || stateChanged || !sentAt.IsZero() {
			if err := a.state.Set(ctx, e.Description, pass, sentAt); err != nil {
				a.log.Warn("alert_state_error", zap.String("description", e.Description), zap.Error(err))
			}
		}
	}
}
