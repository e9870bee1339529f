package handler

import (
	"context"
	"net/http"

	"learnhub/internal/middleware"
	"learnhub/internal/model"
	"learnhub/pkg/apierror"
)

type profileService interface {
	Profile(ctx context.Context, userID string) (model.User, error)
	UpdateInfo(ctx context.Context, userID string, req model.UpdateUserInfoRequest) (model.User, error)
	UpdatePassword(ctx context.Context, userID string, req model.UpdatePasswordRequest) (model.User, error)
	UpdateAvatar(ctx context.Context, userID string, req model.UpdateAvatarRequest) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, req model.UpdateRoleRequest) (model.User, error)
	DeleteUser(ctx context.Context, actorID string, id string) error
}

type UserHandler struct {
	service profileService
}

func NewUserHandler(service profileService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) error {
	principal, err := currentUser(r)
	if err != nil {
		return err
	}

	user, err := h.service.Profile(r.Context(), principal.ID)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusOK, user, nil)
	return nil
}

func (h *UserHandler) UpdateInfo(w http.ResponseWriter, r *http.Request) error {
	principal, err := currentUser(r)
	if err != nil {
		return err
	}

	var payload model.UpdateUserInfoRequest
	if err := bind(r, &payload); err != nil {
		return err
	}

	user, err := h.service.UpdateInfo(r.Context(), principal.ID, payload)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusCreated, user, nil)
	return nil
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) error {
	principal, err := currentUser(r)
	if err != nil {
		return err
	}

	var payload model.UpdatePasswordRequest
	if err := bind(r, &payload); err != nil {
		return err
	}

	user, err := h.service.UpdatePassword(r.Context(), principal.ID, payload)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusCreated, user, nil)
	return nil
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) error {
	principal, err := currentUser(r)
	if err != nil {
		return err
	}

	var payload model.UpdateAvatarRequest
	if err := bind(r, &payload); err != nil {
		return err
	}

	user, err := h.service.UpdateAvatar(r.Context(), principal.ID, payload)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusOK, user, nil)
	return nil
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) error {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusOK, users, nil)
	return nil
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) error {
	var payload model.UpdateRoleRequest
	if err := bind(r, &payload); err != nil {
		return err
	}

	user, err := h.service.UpdateRole(r.Context(), payload)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusCreated, user, nil)
	return nil
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	principal, err := currentUser(r)
	if err != nil {
		return err
	}

	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	if err := h.service.DeleteUser(r.Context(), principal.ID, id); err != nil {
		return err
	}

	writeMessage(w, http.StatusOK, "User deleted successfully", nil)
	return nil
}

func currentUser(r *http.Request) (model.User, error) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return model.User{}, apierror.Unauthorized("Please login to access this resource")
	}
	return principal.User, nil
}
