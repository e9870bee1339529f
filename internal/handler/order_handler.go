package handler

import (
	"context"
	"net/http"

	"learnhub/internal/model"
)

type orderService interface {
	Create(ctx context.Context, user model.User, req model.CreateOrderRequest) (model.Order, error)
	List(ctx context.Context) ([]model.Order, error)
}

type OrderHandler struct {
	service orderService
}

func NewOrderHandler(service orderService) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}

	var payload model.CreateOrderRequest
	if err := bind(r, &payload); err != nil {
		return err
	}

	order, err := h.service.Create(r.Context(), user, payload)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusCreated, order, nil)
	return nil
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) error {
	orders, err := h.service.List(r.Context())
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusOK, orders, nil)
	return nil
}
