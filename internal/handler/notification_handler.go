package handler

import (
	"context"
	"net/http"

	"learnhub/internal/model"
)

type notificationService interface {
	List(ctx context.Context) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) ([]model.Notification, error)
}

type NotificationHandler struct {
	service notificationService
}

func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) error {
	notifications, err := h.service.List(r.Context())
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusOK, notifications, nil)
	return nil
}

// MarkRead answers with the full list so admin dashboards can re-render.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	notifications, err := h.service.MarkRead(r.Context(), id)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusCreated, notifications, nil)
	return nil
}
