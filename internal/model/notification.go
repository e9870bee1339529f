package model

import "time"

const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
