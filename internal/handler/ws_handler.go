package handler

import (
	"net/http"

	"learnhub/internal/websocket"
)

type NotificationStreamHandler struct {
	hub *websocket.Hub
}

func NewNotificationStreamHandler(hub *websocket.Hub) *NotificationStreamHandler {
	return &NotificationStreamHandler{hub: hub}
}

func (h *NotificationStreamHandler) Stream(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}
	return h.hub.ServeWS(w, r, user.ID)
}
