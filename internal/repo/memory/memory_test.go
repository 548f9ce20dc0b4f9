package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hamed0406/renderwatch/internal/domain"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 2, 19, 12, 0, 0, 0, time.UTC)

func job(id string, urls ...string) domain.Job {
	return domain.Job{ID: id, URLs: urls, WebhookURL: "https://hooks.example/x", Threshold: 15 * time.Minute}
}

func TestRegister_InsertsStartingRecords(t *testing.T) {
	ctx := context.Background()
	s := New(0)

	require.NoError(t, s.Register(ctx, job("J1", "https://b.example", "https://a.example"), t0))

	all := s.Snapshot(ctx)
	require.Len(t, all, 2)
	require.Equal(t, "https://a.example", all[0].URL)
	for _, st := range all {
		require.Equal(t, domain.StatusStarting, st.CurrentStatus)
		require.True(t, st.IsActive)
		require.Equal(t, t0, st.LastActive)
		require.Equal(t, t0, st.NextCheckTime)
		require.Nil(t, st.DownSince)
		require.Equal(t, "J1", st.JobID)
	}
}

func TestRegister_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	require.NoError(t, s.Register(ctx, job("J1", "https://a.example"), t0))

	err := s.Register(ctx, job("J2", "https://c.example", "https://a.example"), t0)
	require.ErrorIs(t, err, domain.ErrAlreadyMonitored)
	_, ok := s.Get(ctx, "https://c.example")
	require.False(t, ok, "partial insert must not happen")
	existing, ok := s.Get(ctx, "https://a.example")
	require.True(t, ok)
	require.Equal(t, "J1", existing.JobID)

	err = s.Register(ctx, job("J3", "https://d.example", "https://d.example"), t0)
	require.ErrorIs(t, err, domain.ErrAlreadyMonitored)
	require.Len(t, s.Snapshot(ctx), 1)
}

func TestUnregister(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	require.NoError(t, s.Register(ctx, job("J1", "https://a.example", "https://b.example"), t0))
	require.NoError(t, s.Append(ctx, &domain.CheckResult{URL: "https://a.example", Up: true, CheckedAt: t0}))

	removed, err := s.Unregister(ctx, "https://a.example")
	require.NoError(t, err)
	require.Equal(t, "J1", removed.JobID)

	_, err = s.Unregister(ctx, "https://a.example")
	require.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = s.History(ctx, "https://a.example", 0)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// sibling untouched
	_, ok := s.Get(ctx, "https://b.example")
	require.True(t, ok)

	// re-registering after removal is allowed
	require.NoError(t, s.Register(ctx, job("J2", "https://a.example"), t0.Add(time.Hour)))
}

func TestReadersGetCopies(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	require.NoError(t, s.Register(ctx, job("J1", "https://a.example"), t0))

	st, _ := s.Get(ctx, "https://a.example")
	st.IsActive = false
	st.CurrentStatus = domain.StatusInactive

	again, _ := s.Get(ctx, "https://a.example")
	require.True(t, again.IsActive)
	require.Equal(t, domain.StatusStarting, again.CurrentStatus)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	require.NoError(t, s.Register(ctx, job("J1", "https://a.example"), t0))

	got, ok := s.Update(ctx, "https://a.example", func(st *domain.TargetState) {
		st.Apply(true, t0.Add(time.Minute), domain.Policy{})
	})
	require.True(t, ok)
	require.Equal(t, domain.StatusActive, got.CurrentStatus)

	_, ok = s.Update(ctx, "https://missing.example", func(*domain.TargetState) {
		t.Fatal("fn must not run for missing url")
	})
	require.False(t, ok)
}

func TestHistory_BoundedNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New(3)
	require.NoError(t, s.Register(ctx, job("J1", "https://a.example"), t0))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(ctx, &domain.CheckResult{
			URL:        "https://a.example",
			HTTPStatus: 200 + i,
			CheckedAt:  t0.Add(time.Duration(i) * time.Minute),
		}))
	}
	h, err := s.History(ctx, "https://a.example", 0)
	require.NoError(t, err)
	require.Len(t, h, 3)
	require.Equal(t, 204, h[0].HTTPStatus)
	require.Equal(t, 202, h[2].HTTPStatus)

	h, err = s.History(ctx, "https://a.example", 1)
	require.NoError(t, err)
	require.Len(t, h, 1)

	// results for unknown targets are dropped
	require.NoError(t, s.Append(ctx, &domain.CheckResult{URL: "https://gone.example"}))
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := New(10)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := fmt.Sprintf("https://app%d.example", i)
			if err := s.Register(ctx, job(fmt.Sprint(i), u), t0); err != nil {
				t.Error(err)
				return
			}
			s.Update(ctx, u, func(st *domain.TargetState) { st.Apply(false, t0.Add(time.Minute), domain.Policy{}) })
			_ = s.Append(ctx, &domain.CheckResult{URL: u, CheckedAt: t0})
			_ = s.Snapshot(ctx)
		}(i)
	}
	wg.Wait()
	require.Len(t, s.Snapshot(ctx), 20)
}
