package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/internal/model"
)

type memoryNotifications struct {
	mu    sync.Mutex
	items []model.Notification
	err   error
}

func (m *memoryNotifications) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}

	var deleted int64
	kept := m.items[:0]
	for _, n := range m.items {
		if n.Status == model.NotificationRead && n.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	m.items = kept
	return deleted, nil
}

func TestNotificationCleanup_Run(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	store := &memoryNotifications{items: []model.Notification{
		{ID: "old-read", Status: model.NotificationRead, CreatedAt: now.Add(-31 * day)},
		{ID: "recent-read", Status: model.NotificationRead, CreatedAt: now.Add(-29 * day)},
		{ID: "old-unread", Status: model.NotificationUnread, CreatedAt: now.Add(-90 * day)},
	}}

	cleanup := NewNotificationCleanup(store, 0)
	cleanup.now = func() time.Time { return now }

	deleted, err := cleanup.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var ids []string
	for _, n := range store.items {
		ids = append(ids, n.ID)
	}
	assert.ElementsMatch(t, []string{"recent-read", "old-unread"}, ids)

	// Nothing left to purge on a second pass.
	deleted, err = cleanup.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestNotificationCleanup_Error(t *testing.T) {
	store := &memoryNotifications{err: errors.New("connection refused")}

	_, err := NewNotificationCleanup(store, time.Hour).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestScheduler_RunsTask(t *testing.T) {
	s := NewScheduler(time.Second)

	var runs atomic.Int32
	require.NoError(t, s.Add("* * * * * *", "tick", func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("failures are logged, not fatal")
	}))

	s.Start()
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(0)
	assert.Error(t, s.Add("every day", "bad", func(context.Context) error { return nil }))
	assert.Error(t, s.Add("0 0 * * *", "five-field", func(context.Context) error { return nil }))
}

func TestScheduler_TaskDeadlineFollowsTimeout(t *testing.T) {
	s := NewScheduler(time.Hour)

	remaining := make(chan time.Duration, 1)
	require.NoError(t, s.Add("* * * * * *", "deadline", func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		if !ok {
			deadline = time.Now()
		}
		select {
		case remaining <- time.Until(deadline):
		default:
		}
		return nil
	}))

	s.Start()
	defer s.Stop(context.Background())

	select {
	case left := <-remaining:
		assert.Greater(t, left, 59*time.Minute)
	case <-time.After(3 * time.Second):
		t.Fatal("task never ran")
	}
}
