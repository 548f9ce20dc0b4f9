package probe

import (
	"context"
	"time"
)

// RetryChecker re-runs Inner at a fixed interval until it succeeds, the
// attempts run out, or ctx ends. The caller's probe deadline bounds the
// whole series.
type RetryChecker struct {
	Inner    Checker
	Attempts int
	Backoff  time.Duration
}

// WithRetries wraps c only when more than one attempt is asked for.
func WithRetries(c Checker, attempts int, backoff time.Duration) Checker {
	if attempts <= 1 {
		return c
	}
	return &RetryChecker{Inner: c, Attempts: attempts, Backoff: backoff}
}

func (r *RetryChecker) Check(ctx context.Context, target string) CheckResult {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last CheckResult
	for i := 0; i < attempts; i++ {
		last = r.Inner.Check(ctx, target)
		if last.Success || i == attempts-1 {
			break
		}
		if !sleepCtx(ctx, r.Backoff) {
			break
		}
	}
	if !last.Success && attempts > 1 {
		last.Message = last.Message + " (after retries)"
	}
	return last
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
