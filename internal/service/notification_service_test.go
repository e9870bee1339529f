package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"learnhub/internal/event"
	"learnhub/internal/model"
)

func TestNotificationService_MarkReadReturnsList(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(repo, event.NewBus())

	repo.On("MarkRead", mock.Anything, "n1").Return(nil).Once()
	repo.On("List", mock.Anything).Return([]model.Notification{{ID: "n1", Status: model.NotificationRead}}, nil).Once()

	list, err := svc.MarkRead(context.Background(), "n1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.NotificationRead, list[0].Status)
}

func TestNotificationService_MarkReadMissing(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(repo, event.NewBus())

	repo.On("MarkRead", mock.Anything, "nope").Return(model.ErrNotificationNotFound).Once()

	_, err := svc.MarkRead(context.Background(), "nope")
	assert.ErrorIs(t, err, model.ErrNotificationNotFound)
	repo.AssertNotCalled(t, "List", mock.Anything)
}

func TestNotificationService_RunRecordsEvents(t *testing.T) {
	cases := []struct {
		name    string
		payload any
		title   string
		message string
	}{
		{
			name:    "order",
			payload: event.OrderCreated{UserID: "u1", UserName: "Ann", ItemName: "Go in practice"},
			title:   "New Order",
			message: "You have a new order from Ann for Go in practice",
		},
		{
			name:    "question",
			payload: event.QuestionAdded{UserID: "u1", ContentTitle: "Intro"},
			title:   "New Question Received",
			message: "You have a new question in Intro",
		},
		{
			name:    "answer",
			payload: event.AnswerAdded{UserID: "u1", ContentTitle: "Intro"},
			title:   "New Question Reply Received",
			message: "You have a new question reply in Intro",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bus := event.NewBus()
			repo := new(MockNotificationRepository)
			svc := NewNotificationService(repo, bus)

			recorded := make(chan model.Notification, 1)
			repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
				select {
				case recorded <- args.Get(1).(model.Notification):
				default:
				}
			}).Return(nil)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			events, unsubscribe := bus.Subscribe()
			defer unsubscribe()

			done := make(chan struct{})
			go func() {
				svc.Run(ctx)
				close(done)
			}()

			// Run subscribes asynchronously; keep publishing until it is seen.
			require.Eventually(t, func() bool {
				bus.Publish(event.New("test", "u1", tc.payload))
				return len(recorded) > 0
			}, 2*time.Second, 20*time.Millisecond)

			n := <-recorded
			assert.Equal(t, tc.title, n.Title)
			assert.Equal(t, tc.message, n.Message)
			assert.Equal(t, model.NotificationUnread, n.Status)
			require.NotNil(t, n.UserID)
			assert.Equal(t, "u1", *n.UserID)

			require.Eventually(t, func() bool {
				for {
					select {
					case e := <-events:
						if e.Type == event.TypeNotificationCreated {
							return true
						}
					default:
						return false
					}
				}
			}, time.Second, 10*time.Millisecond)

			cancel()
			<-done
		})
	}
}

func TestNotificationService_IgnoresUnrelatedEvents(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(repo, event.NewBus())

	svc.handle(context.Background(), event.New(event.TypeProductCreated, "admin", model.Product{ID: "p1"}))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
