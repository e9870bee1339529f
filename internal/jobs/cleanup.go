package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultRetention is how long a read notification is kept.
const DefaultRetention = 30 * 24 * time.Hour

type notificationPurger interface {
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationCleanup removes read notifications older than the retention
// window. Unread notifications are never touched.
type NotificationCleanup struct {
	notifications notificationPurger
	retention     time.Duration
	now           func() time.Time
}

func NewNotificationCleanup(notifications notificationPurger, retention time.Duration) *NotificationCleanup {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &NotificationCleanup{notifications: notifications, retention: retention, now: time.Now}
}

func (c *NotificationCleanup) Run(ctx context.Context) (int64, error) {
	cutoff := c.now().UTC().Add(-c.retention)

	deleted, err := c.notifications.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge read notifications: %w", err)
	}

	slog.Info("read notifications purged", "deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
	return deleted, nil
}
