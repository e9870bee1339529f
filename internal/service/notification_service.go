package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"learnhub/internal/event"
	"learnhub/internal/model"
)

type notificationRepository interface {
	Create(ctx context.Context, n model.Notification) error
	List(ctx context.Context) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type NotificationService struct {
	notifications notificationRepository
	bus           event.Bus
	now           func() time.Time
}

func NewNotificationService(notifications notificationRepository, bus event.Bus) *NotificationService {
	return &NotificationService{notifications: notifications, bus: bus, now: time.Now}
}

func (s *NotificationService) List(ctx context.Context) ([]model.Notification, error) {
	return s.notifications.List(ctx)
}

// MarkRead flips a notification to read and returns the refreshed list.
func (s *NotificationService) MarkRead(ctx context.Context, id string) ([]model.Notification, error) {
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	return s.notifications.List(ctx)
}

func (s *NotificationService) Notify(ctx context.Context, userID string, title string, message string) (model.Notification, error) {
	now := s.now().UTC()
	n := model.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Status:    model.NotificationUnread,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if userID != "" {
		n.UserID = &userID
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		return model.Notification{}, err
	}

	s.bus.Publish(event.New(event.TypeNotificationCreated, userID, n))
	return n, nil
}

// Run turns order and discussion events into admin notifications until ctx
// is done.
func (s *NotificationService) Run(ctx context.Context) {
	events, unsubscribe := s.bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			s.handle(ctx, e)
		}
	}
}

func (s *NotificationService) handle(ctx context.Context, e event.Event) {
	var userID, title, message string

	switch p := e.Payload.(type) {
	case event.OrderCreated:
		userID = p.UserID
		title = "New Order"
		message = fmt.Sprintf("You have a new order from %s for %s", p.UserName, p.ItemName)
	case event.QuestionAdded:
		userID = p.UserID
		title = "New Question Received"
		message = fmt.Sprintf("You have a new question in %s", p.ContentTitle)
	case event.AnswerAdded:
		userID = p.UserID
		title = "New Question Reply Received"
		message = fmt.Sprintf("You have a new question reply in %s", p.ContentTitle)
	default:
		return
	}

	if _, err := s.Notify(ctx, userID, title, message); err != nil {
		slog.Error("notification not recorded", "event_type", e.Type, "event_id", e.ID, "error", err)
	}
}
