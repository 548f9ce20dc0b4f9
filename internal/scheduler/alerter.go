package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/renderwatch/internal/domain"
	"github.com/hamed0406/renderwatch/internal/notify"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Timeout         time.Duration
}

// Alerter turns transitions into notifications. Delivery failures are
// logged and absorbed; they never reach the job loop.
type Alerter struct {
	log      *zap.Logger
	notifier notify.Notifier
	cfg      AlerterConfig
}

func NewAlerter(logger *zap.Logger, notifier notify.Notifier, cfg AlerterConfig) *Alerter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Alerter{log: logger, notifier: notifier, cfg: cfg}
}

// DownMessage is the text sent to the job destination when a target
// crosses its threshold.
func DownMessage(url string, inactiveFor time.Duration) string {
	return fmt.Sprintf("🔴 App %s has been inactive for %d minutes!", url, int(inactiveFor/time.Minute))
}

func RecoveryMessage(url string, downFor time.Duration) string {
	return fmt.Sprintf("🟢 App %s is active again after %d minutes of inactivity.", url, int(downFor/time.Minute))
}

// Down reports a went_inactive transition. detail is appended on operator
// channels only.
func (a *Alerter) Down(ctx context.Context, job domain.Job, st domain.TargetState, now time.Time, detail string) bool {
	return a.send(ctx, job, notify.Alert{
		Title:     "🔴 Target INACTIVE",
		Message:   DownMessage(st.URL, st.InactiveFor(now)),
		Detail:    detail,
		Severity:  notify.SeverityError,
		TargetURL: st.URL,
		At:        now,
	})
}

// Recovered reports a recovered transition when the policy asks for it.
func (a *Alerter) Recovered(ctx context.Context, job domain.Job, st domain.TargetState, downFor time.Duration, now time.Time) bool {
	if !a.cfg.AlertOnRecovery {
		return false
	}
	return a.send(ctx, job, notify.Alert{
		Title:     "🟢 Target RECOVERED",
		Message:   RecoveryMessage(st.URL, downFor),
		Severity:  notify.SeveritySuccess,
		TargetURL: st.URL,
		At:        now,
	})
}

// send reports whether the job destination got the alert. Operator channel
// failures are logged per channel but do not count against it.
func (a *Alerter) send(ctx context.Context, job domain.Job, al notify.Alert) bool {
	if a.notifier == nil {
		return false
	}
	nctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	fields := []zap.Field{
		zap.String("job_id", job.ID),
		zap.String("app_url", al.TargetURL),
		zap.String("severity", string(al.Severity)),
	}
	delivered := true
	for _, err := range multierr.Errors(a.notifier.Notify(nctx, job.WebhookURL, al)) {
		channel := notify.ChannelOf(a.notifier)
		var ce *notify.ChannelError
		if errors.As(err, &ce) {
			channel = ce.Channel
		}
		if channel == notify.ChannelWebhook || ce == nil {
			delivered = false
		}
		a.log.Warn("notify_failed", append(fields, zap.String("channel", channel), zap.Error(err))...)
	}
	if delivered {
		a.log.Info("notify_sent", fields...)
	}
	return delivered
}
