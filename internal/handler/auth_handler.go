package handler

import (
	"context"
	"net/http"

	"learnhub/internal/middleware"
	"learnhub/internal/model"
	"learnhub/pkg/apierror"
)

type accountService interface {
	Register(ctx context.Context, req model.RegistrationRequest) (model.RegistrationResponse, error)
	Activate(ctx context.Context, req model.ActivationRequest) (model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (model.User, model.TokenPair, error)
	SocialAuth(ctx context.Context, req model.SocialAuthRequest) (model.User, model.TokenPair, error)
	Logout(ctx context.Context, userID string) error
}

type tokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, model.User, error)
}

type AuthHandler struct {
	accounts accountService
	sessions tokenRefresher
	cookies  middleware.Cookies
}

func NewAuthHandler(accounts accountService, sessions tokenRefresher, cookies middleware.Cookies) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions, cookies: cookies}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) error {
	var payload model.RegistrationRequest
	if err := bind(r, &payload); err != nil {
		return err
	}

	resp, err := h.accounts.Register(r.Context(), payload)
	if err != nil {
		return err
	}

	writeMessage(w, http.StatusCreated, resp.Message, resp)
	return nil
}

func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) error {
	var payload model.ActivationRequest
	if err := bind(r, &payload); err != nil {
		return err
	}

	if _, err := h.accounts.Activate(r.Context(), payload); err != nil {
		return err
	}

	writeMessage(w, http.StatusCreated, "Account activated successfully", nil)
	return nil
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var payload model.LoginRequest
	if err := bind(r, &payload); err != nil {
		return err
	}

	user, pair, err := h.accounts.Login(r.Context(), payload)
	if err != nil {
		return err
	}

	h.cookies.Set(w, pair)
	writeSuccess(w, http.StatusOK, model.LoginResponse{User: user, AccessToken: pair.AccessToken}, nil)
	return nil
}

func (h *AuthHandler) SocialAuth(w http.ResponseWriter, r *http.Request) error {
	var payload model.SocialAuthRequest
	if err := bind(r, &payload); err != nil {
		return err
	}

	user, pair, err := h.accounts.SocialAuth(r.Context(), payload)
	if err != nil {
		return err
	}

	h.cookies.Set(w, pair)
	writeSuccess(w, http.StatusOK, model.LoginResponse{User: user, AccessToken: pair.AccessToken}, nil)
	return nil
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return apierror.Unauthorized("Please login to access this resource")
	}

	if err := h.accounts.Logout(r.Context(), principal.User.ID); err != nil {
		return err
	}

	h.cookies.Clear(w)
	writeMessage(w, http.StatusOK, "Logged out successfully", nil)
	return nil
}

// Refresh rotates the token pair from the refresh cookie.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(middleware.RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return model.ErrSessionExpired
	}

	pair, _, err := h.sessions.Refresh(r.Context(), cookie.Value)
	if err != nil {
		return err
	}

	h.cookies.Set(w, pair)
	writeSuccess(w, http.StatusOK, model.RefreshResponse{AccessToken: pair.AccessToken}, nil)
	return nil
}
