package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hamed0406/renderwatch/internal/domain"
	"github.com/hamed0406/renderwatch/internal/hub"
	"github.com/hamed0406/renderwatch/internal/probe"
	"github.com/hamed0406/renderwatch/internal/repo"
)

var ErrShuttingDown = errors.New("engine is shutting down")

type Config struct {
	Interval         time.Duration // tick cadence when a job has no schedule
	ProbeTimeout     time.Duration
	ActiveInterval   time.Duration // throttle for healthy targets
	DefaultThreshold time.Duration
}

// Broadcaster receives live events. *hub.Hub satisfies it.
type Broadcaster interface {
	Broadcast(hub.Event)
}

// Diagnoser explains a failed probe. *probe.DNSChecker satisfies it.
type Diagnoser interface {
	Diagnose(ctx context.Context, target string) probe.DNSStatus
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock replaces time.Now for state bookkeeping. Sleeps between ticks
// still use real timers.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithBroadcaster(b Broadcaster) Option {
	return func(e *Engine) { e.events = b }
}

func WithDiagnoser(d Diagnoser) Option {
	return func(e *Engine) { e.diag = d }
}

type task struct {
	job    domain.Job
	cancel context.CancelFunc
	done   chan struct{}
}

// Engine owns one loop per job. All target state lives in the store; the
// engine only tracks which loops are running.
type Engine struct {
	log     *zap.Logger
	store   repo.Store
	checker probe.Checker
	alerter *Alerter
	events  Broadcaster
	diag    Diagnoser
	cfg     Config
	now     func() time.Time

	mu     sync.Mutex
	tasks  map[string]*task
	closed bool
}

func New(store repo.Store, checker probe.Checker, alerter *Alerter, cfg Config, opts ...Option) *Engine {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = probe.DefaultTimeout
	}
	if cfg.ActiveInterval <= 0 {
		cfg.ActiveInterval = domain.DefaultActiveInterval
	}
	if cfg.DefaultThreshold <= 0 {
		cfg.DefaultThreshold = domain.DefaultThreshold
	}
	e := &Engine{
		log:     zap.NewNop(),
		store:   store,
		checker: checker,
		alerter: alerter,
		cfg:     cfg,
		now:     time.Now,
		tasks:   make(map[string]*task),
	}
	for _, o := range opts {
		o(e)
	}
	if e.alerter == nil {
		e.alerter = NewAlerter(e.log, nil, AlerterConfig{})
	}
	return e
}

// Start validates job, registers its targets and launches its loop. The
// first tick runs immediately. The returned job carries the assigned ID and
// normalized URLs.
func (e *Engine) Start(ctx context.Context, job domain.Job) (domain.Job, error) {
	urls := make([]string, len(job.URLs))
	for i, u := range job.URLs {
		urls[i] = domain.NormalizeURL(u)
	}
	job.URLs = urls
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Threshold == 0 {
		job.Threshold = e.cfg.DefaultThreshold
	}
	job = job.WithDefaults(e.now())
	if err := job.Validate(); err != nil {
		return domain.Job{}, err
	}
	sched, err := ParseSchedule(job.Schedule, e.cfg.Interval)
	if err != nil {
		return domain.Job{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.Job{}, ErrShuttingDown
	}
	if err := e.store.Register(ctx, job, e.now()); err != nil {
		return domain.Job{}, err
	}

	lctx, cancel := context.WithCancel(context.Background())
	t := &task{job: job, cancel: cancel, done: make(chan struct{})}
	e.tasks[job.ID] = t
	go e.run(lctx, t, sched)

	e.log.Info("job_started",
		zap.String("job_id", job.ID),
		zap.Strings("apps", job.URLs),
		zap.Float64("threshold_min", job.ThresholdMinutes()),
		zap.String("interval", job.Schedule),
	)
	e.broadcast(hub.Event{Type: "job.started", JobID: job.ID, Payload: job})
	return job, nil
}

// Stop unregisters one target. Once none of the job's targets remain its
// loop is cancelled and Stop waits for it to exit, so no probe of the job
// runs after Stop returns.
func (e *Engine) Stop(ctx context.Context, url string) (domain.TargetState, error) {
	url = domain.NormalizeURL(url)
	removed, err := e.store.Unregister(ctx, url)
	if err != nil {
		return domain.TargetState{}, err
	}
	e.log.Info("target_unregistered", zap.String("app_url", url), zap.String("job_id", removed.JobID))
	e.broadcast(hub.Event{Type: "target.unregistered", URL: url, JobID: removed.JobID})

	e.mu.Lock()
	t := e.tasks[removed.JobID]
	e.mu.Unlock()
	if t != nil && !e.hasTargets(ctx, t.job) {
		t.cancel()
		select {
		case <-t.done:
		case <-ctx.Done():
		}
	}
	return removed, nil
}

func (e *Engine) Status(ctx context.Context) []domain.TargetState {
	return e.store.Snapshot(ctx)
}

func (e *Engine) History(ctx context.Context, url string, limit int) ([]domain.CheckResult, error) {
	return e.store.History(ctx, domain.NormalizeURL(url), limit)
}

// Jobs lists the jobs whose loops are still running.
func (e *Engine) Jobs() []domain.Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Job, 0, len(e.tasks))
	for _, t := range e.tasks {
		out = append(out, t.job)
	}
	return out
}

// Shutdown cancels every loop and waits for them until ctx ends.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	running := make([]*task, 0, len(e.tasks))
	for _, t := range e.tasks {
		t.cancel()
		running = append(running, t)
	}
	e.mu.Unlock()

	for _, t := range running {
		select {
		case <-t.done:
		case <-ctx.Done():
			return fmt.Errorf("engine shutdown: %w", ctx.Err())
		}
	}
	e.log.Info("engine_stopped")
	return nil
}

func (e *Engine) run(ctx context.Context, t *task, sched cron.Schedule) {
	defer close(t.done)
	defer func() {
		e.mu.Lock()
		if e.tasks[t.job.ID] == t {
			delete(e.tasks, t.job.ID)
		}
		e.mu.Unlock()
		t.cancel()
	}()

	for {
		if !e.tick(ctx, t.job) {
			e.log.Info("job_finished", zap.String("job_id", t.job.ID))
			return
		}
		now := time.Now()
		timer := time.NewTimer(sched.Next(now).Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			e.log.Info("job_stopped", zap.String("job_id", t.job.ID))
			return
		case <-timer.C:
		}
	}
}

// tick probes every due target of job once, in job order. It reports false
// when the job has no registered targets left.
func (e *Engine) tick(ctx context.Context, job domain.Job) bool {
	remaining := 0
	for _, url := range job.URLs {
		if ctx.Err() != nil {
			return false
		}
		st, ok := e.store.Get(ctx, url)
		if !ok || st.JobID != job.ID {
			continue
		}
		remaining++
		if !st.Due(e.now()) {
			continue
		}
		e.checkTarget(ctx, job, url)
	}
	return remaining > 0
}

func (e *Engine) checkTarget(ctx context.Context, job domain.Job, url string) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("target_check_panic",
				zap.String("job_id", job.ID),
				zap.String("app_url", url),
				zap.Any("panic", r),
			)
		}
	}()

	pctx, cancel := context.WithTimeout(ctx, e.cfg.ProbeTimeout)
	out := e.checker.Check(pctx, url)
	cancel()
	if ctx.Err() != nil {
		return
	}

	now := e.now()
	policy := domain.Policy{Threshold: job.Threshold, ActiveInterval: e.cfg.ActiveInterval}
	var (
		tr         domain.Transition
		lastActive time.Time
	)
	st, ok := e.store.Update(ctx, url, func(s *domain.TargetState) {
		if s.JobID != job.ID {
			return
		}
		lastActive = s.LastActive
		tr = s.Apply(out.Success, now, policy)
		s.LastStatusCode = out.StatusCode
		if !out.Success {
			s.LastError = out.Message
		}
	})
	if !ok || st.JobID != job.ID {
		return
	}

	_ = e.store.Append(ctx, &domain.CheckResult{
		URL:        url,
		Up:         out.Success,
		HTTPStatus: out.StatusCode,
		LatencyMS:  out.LatencyMS,
		Reason:     out.Message,
		Status:     st.CurrentStatus,
		CheckedAt:  now,
	})
	e.log.Debug("target_checked",
		zap.String("job_id", job.ID),
		zap.String("app_url", url),
		zap.Bool("up", out.Success),
		zap.Int("status", out.StatusCode),
		zap.Float64("latency_ms", out.LatencyMS),
		zap.String("reason", out.Message),
		zap.String("state", string(st.CurrentStatus)),
	)

	switch tr {
	case domain.TransitionWentInactive:
		detail := "Reason: " + out.Message
		if e.diag != nil {
			detail += "\nDNS: " + e.diag.Diagnose(ctx, url).Class
		}
		e.log.Warn("target_inactive",
			zap.String("job_id", job.ID),
			zap.String("app_url", url),
			zap.Duration("inactive_for", st.InactiveFor(now)),
			zap.String("reason", out.Message),
		)
		e.alerter.Down(ctx, job, st, now, detail)
		e.broadcast(hub.Event{Type: "target.inactive", URL: url, JobID: job.ID, Payload: st})
	case domain.TransitionRecovered:
		downFor := now.Sub(lastActive)
		e.log.Info("target_recovered",
			zap.String("job_id", job.ID),
			zap.String("app_url", url),
			zap.Duration("down_for", downFor),
		)
		e.alerter.Recovered(ctx, job, st, downFor, now)
		e.broadcast(hub.Event{Type: "target.recovered", URL: url, JobID: job.ID, Payload: st})
	default:
		e.broadcast(hub.Event{Type: "target.checked", URL: url, JobID: job.ID, Payload: st})
	}
}

func (e *Engine) hasTargets(ctx context.Context, job domain.Job) bool {
	for _, u := range job.URLs {
		if st, ok := e.store.Get(ctx, u); ok && st.JobID == job.ID {
			return true
		}
	}
	return false
}

func (e *Engine) broadcast(evt hub.Event) {
	if e.events != nil {
		e.events.Broadcast(evt)
	}
}
