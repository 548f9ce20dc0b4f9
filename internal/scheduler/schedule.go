package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hamed0406/renderwatch/internal/domain"
)

// DefaultInterval is the tick cadence of a job without its own schedule.
const DefaultInterval = 60 * time.Second

// fixedDelay fires every d. Unlike cron.Every it keeps sub-second periods.
type fixedDelay time.Duration

func (d fixedDelay) Next(t time.Time) time.Time {
	return t.Add(time.Duration(d))
}

// ParseSchedule turns a job's interval setting into a schedule. An empty
// expression means every fallback. Standard five-field cron specs and
// descriptors such as "@every 2m" are accepted.
func ParseSchedule(expr string, fallback time.Duration) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		if fallback <= 0 {
			fallback = DefaultInterval
		}
		return fixedDelay(fallback), nil
	}
	s, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: interval %q: %v", domain.ErrInvalidJob, expr, err)
	}
	return s, nil
}
