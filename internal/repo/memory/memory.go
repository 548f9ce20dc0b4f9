package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hamed0406/renderwatch/internal/domain"
)

const DefaultHistorySize = 50

type Store struct {
	mu          sync.RWMutex
	targets     map[string]*domain.TargetState
	results     map[string][]domain.CheckResult
	historySize int
}

func New(historySize int) *Store {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &Store{
		targets:     make(map[string]*domain.TargetState),
		results:     make(map[string][]domain.CheckResult),
		historySize: historySize,
	}
}

func (m *Store) Register(ctx context.Context, job domain.Job, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{}, len(job.URLs))
	for _, u := range job.URLs {
		if _, ok := m.targets[u]; ok {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyMonitored, u)
		}
		if _, dup := seen[u]; dup {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyMonitored, u)
		}
		seen[u] = struct{}{}
	}
	for _, u := range job.URLs {
		m.targets[u] = domain.NewTargetState(u, job.ID, now)
	}
	return nil
}

func (m *Store) Unregister(ctx context.Context, url string) (domain.TargetState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.targets[url]
	if !ok {
		return domain.TargetState{}, fmt.Errorf("%w: %s", domain.ErrNotFound, url)
	}
	delete(m.targets, url)
	delete(m.results, url)
	return t.Clone(), nil
}

func (m *Store) Get(ctx context.Context, url string) (domain.TargetState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.targets[url]
	if !ok {
		return domain.TargetState{}, false
	}
	return t.Clone(), true
}

func (m *Store) Update(ctx context.Context, url string, fn func(*domain.TargetState)) (domain.TargetState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.targets[url]
	if !ok {
		return domain.TargetState{}, false
	}
	fn(t)
	return t.Clone(), true
}

func (m *Store) Snapshot(ctx context.Context) []domain.TargetState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.TargetState, 0, len(m.targets))
	for _, t := range m.targets {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

// Append drops results for targets that were unregistered while the probe
// was in flight.
func (m *Store) Append(ctx context.Context, r *domain.CheckResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.targets[r.URL]; !ok {
		return nil
	}
	h := append(m.results[r.URL], *r)
	if len(h) > m.historySize {
		h = append(h[:0:0], h[len(h)-m.historySize:]...)
	}
	m.results[r.URL] = h
	return nil
}

func (m *Store) History(ctx context.Context, url string, limit int) ([]domain.CheckResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.targets[url]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, url)
	}
	h := m.results[url]
	n := len(h)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.CheckResult, 0, n)
	for i := len(h) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h[i])
	}
	return out, nil
}
