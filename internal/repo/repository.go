package repo

import (
	"context"
	"time"

	"github.com/hamed0406/renderwatch/internal/domain"
)

// Registry is the authoritative table of monitored targets. Readers always
// get copies; the only way to mutate a record is Update.
type Registry interface {
	// Register inserts every URL of job or none of them.
	Register(ctx context.Context, job domain.Job, now time.Time) error
	// Unregister removes the record and its history.
	Unregister(ctx context.Context, url string) (domain.TargetState, error)
	Get(ctx context.Context, url string) (domain.TargetState, bool)
	// Update runs fn on the live record under the registry lock and returns
	// the result. ok is false when the url is not registered.
	Update(ctx context.Context, url string, fn func(*domain.TargetState)) (domain.TargetState, bool)
	// Snapshot returns every record ordered by URL.
	Snapshot(ctx context.Context) []domain.TargetState
}

// HistoryStore keeps a bounded trail of recent checks per target.
type HistoryStore interface {
	Append(ctx context.Context, r *domain.CheckResult) error
	// History returns newest first; limit <= 0 means everything retained.
	History(ctx context.Context, url string, limit int) ([]domain.CheckResult, error)
}

// Store is what the engine and API are wired against.
type Store interface {
	Registry
	HistoryStore
}
