package probe

import "context"

// CheckResult is the unified result of a single probe.
//
// StatusCode is 0 for transport errors and timeouts. Message carries the
// HTTP status line or the absorbed error text.
type CheckResult struct {
	Success    bool
	LatencyMS  float64
	Message    string
	StatusCode int
	Name       string
}

// Checker performs a single check for a given target URL. Implementations
// never return an error: every failure is folded into a CheckResult with
// Success=false.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(ctx context.Context, target string) CheckResult

func (f CheckerFunc) Check(ctx context.Context, target string) CheckResult {
	return f(ctx, target)
}
