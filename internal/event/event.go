package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeUserActivated       Type = "user.activated"
	TypeUserDeleted         Type = "user.deleted"
	TypeProductCreated      Type = "product.created"
	TypeProductUpdated      Type = "product.updated"
	TypeCourseCreated       Type = "course.created"
	TypeCourseUpdated       Type = "course.updated"
	TypeQuestionAdded       Type = "question.added"
	TypeAnswerAdded         Type = "answer.added"
	TypeOrderCreated        Type = "order.created"
	TypeNotificationCreated Type = "notification.created"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actor_id,omitempty"` // Who triggered the event
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}

func New(t Type, actorID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		ActorID:   actorID,
	}
}

// Payloads of events that become notifications.

type OrderCreated struct {
	OrderID  string `json:"order_id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	ItemKind string `json:"item_kind"`
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
}

type QuestionAdded struct {
	CourseID     string `json:"course_id"`
	ContentID    string `json:"content_id"`
	ContentTitle string `json:"content_title"`
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name"`
}

type AnswerAdded struct {
	CourseID     string `json:"course_id"`
	ContentID    string `json:"content_id"`
	ContentTitle string `json:"content_title"`
	QuestionID   string `json:"question_id"`
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name"`
}
