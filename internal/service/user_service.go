package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"learnhub/internal/event"
	"learnhub/internal/mail"
	"learnhub/internal/model"
	"learnhub/pkg/apierror"
)

const avatarWidth = 150

type userRepository interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) error
	UpdateProfile(ctx context.Context, u model.User) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	UpdateAvatar(ctx context.Context, userID string, avatar *model.Image) error
	UpdateRole(ctx context.Context, userID string, role string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.User, error)
}

type activationTokens interface {
	IssueActivation(pending model.PendingUser) (string, string, error)
	VerifyActivation(tokenString string, code string) (model.PendingUser, error)
}

type UserService struct {
	users        userRepository
	activation   activationTokens
	sessions     *SessionService
	images       imageStore
	mailer       mail.Sender
	bus          event.Bus
	passwordCost int
	now          func() time.Time
}

func NewUserService(users userRepository, activation activationTokens, sessions *SessionService, images imageStore, mailer mail.Sender, bus event.Bus) *UserService {
	return &UserService{
		users:        users,
		activation:   activation,
		sessions:     sessions,
		images:       images,
		mailer:       mailer,
		bus:          bus,
		passwordCost: bcrypt.DefaultCost,
		now:          time.Now,
	}
}

// Register validates the address is free and mails an activation code. No
// user row exists until Activate succeeds.
func (s *UserService) Register(ctx context.Context, req model.RegistrationRequest) (model.RegistrationResponse, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.RegistrationResponse{}, err
	}
	if exists {
		return model.RegistrationResponse{}, model.ErrEmailAlreadyExists
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return model.RegistrationResponse{}, err
	}

	name := strings.TrimSpace(req.Name)
	activationToken, code, err := s.activation.IssueActivation(model.PendingUser{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		return model.RegistrationResponse{}, err
	}

	msg, err := mail.ActivationMail(email, mail.ActivationData{Name: name, ActivationCode: code})
	if err != nil {
		return model.RegistrationResponse{}, err
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.Error("activation mail failed", "email", email, "error", err)
		return model.RegistrationResponse{}, apierror.BadRequest("could not send activation email, please try again")
	}

	return model.RegistrationResponse{
		Message:         fmt.Sprintf("Please check your email: %s to activate your account!", email),
		ActivationToken: activationToken,
	}, nil
}

func (s *UserService) Activate(ctx context.Context, req model.ActivationRequest) (model.User, error) {
	pending, err := s.activation.VerifyActivation(req.ActivationToken, req.ActivationCode)
	if err != nil {
		return model.User{}, err
	}

	exists, err := s.users.ExistsByEmail(ctx, pending.Email)
	if err != nil {
		return model.User{}, err
	}
	if exists {
		return model.User{}, model.ErrEmailAlreadyExists
	}

	now := s.now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         pending.Name,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Role:         model.RoleUser,
		IsVerified:   true,
		Courses:      []string{},
		Products:     []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.User{}, err
	}

	s.bus.Publish(event.New(event.TypeUserActivated, user.ID, user))
	return user, nil
}

func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (model.User, model.TokenPair, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return model.User{}, model.TokenPair{}, apierror.BadRequest("Please enter email and password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, model.TokenPair{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}

	if user.PasswordHash == "" {
		return model.User{}, model.TokenPair{}, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.User{}, model.TokenPair{}, model.ErrInvalidCredentials
	}

	pair, err := s.sessions.Establish(ctx, user)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}

	slog.Info("user logged in", "user_id", user.ID)
	return user, pair, nil
}

// SocialAuth logs in the account owning email, creating a verified
// password-less account on first sight.
func (s *UserService) SocialAuth(ctx context.Context, req model.SocialAuthRequest) (model.User, model.TokenPair, error) {
	email := normalizeEmail(req.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		now := s.now().UTC()
		user = model.User{
			ID:         uuid.NewString(),
			Name:       strings.TrimSpace(req.Name),
			Email:      email,
			Role:       model.RoleUser,
			IsVerified: true,
			Courses:    []string{},
			Products:   []string{},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if req.Avatar != "" {
			user.Avatar = &model.Image{URL: req.Avatar}
		}

		if err := s.users.Create(ctx, user); err != nil {
			return model.User{}, model.TokenPair{}, err
		}
		s.bus.Publish(event.New(event.TypeUserActivated, user.ID, user))
	} else if err != nil {
		return model.User{}, model.TokenPair{}, err
	}

	pair, err := s.sessions.Establish(ctx, user)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}
	return user, pair, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.sessions.End(ctx, userID)
}

// Profile prefers the session snapshot and falls back to the database.
func (s *UserService) Profile(ctx context.Context, userID string) (model.User, error) {
	user, ok, err := s.sessions.Cached(ctx, userID)
	if err != nil {
		slog.Warn("session cache read failed", "user_id", userID, "error", err)
	}
	if ok {
		return user, nil
	}

	return s.users.FindByID(ctx, userID)
}

func (s *UserService) UpdateInfo(ctx context.Context, userID string, req model.UpdateUserInfoRequest) (model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	email := normalizeEmail(req.Email)
	if email != "" && email != user.Email {
		exists, err := s.users.ExistsByEmail(ctx, email)
		if err != nil {
			return model.User{}, err
		}
		if exists {
			return model.User{}, model.ErrEmailAlreadyExists
		}
		user.Email = email
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return model.User{}, err
	}

	return user, s.sessions.Sync(ctx, user)
}

func (s *UserService) UpdatePassword(ctx context.Context, userID string, req model.UpdatePasswordRequest) (model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	if user.PasswordHash == "" {
		return model.User{}, model.ErrPasswordNotSet
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return model.User{}, model.ErrOldPasswordMismatch
	}

	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return model.User{}, err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return model.User{}, err
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.now().UTC()

	return user, s.sessions.Sync(ctx, user)
}

// UpdateAvatar stores the new image before dropping the old one so a failed
// upload leaves the profile intact.
func (s *UserService) UpdateAvatar(ctx context.Context, userID string, req model.UpdateAvatarRequest) (model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	avatar, err := s.images.Upload(ctx, "avatars", req.Avatar, avatarWidth)
	if err != nil {
		return model.User{}, err
	}

	if err := s.users.UpdateAvatar(ctx, userID, &avatar); err != nil {
		return model.User{}, err
	}

	if user.Avatar != nil {
		if err := s.images.Destroy(ctx, user.Avatar.PublicID); err != nil {
			slog.Warn("old avatar not removed", "user_id", userID, "public_id", user.Avatar.PublicID, "error", err)
		}
	}

	user.Avatar = &avatar
	user.UpdatedAt = s.now().UTC()
	return user, s.sessions.Sync(ctx, user)
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) UpdateRole(ctx context.Context, req model.UpdateRoleRequest) (model.User, error) {
	user, err := s.users.FindByID(ctx, req.ID)
	if err != nil {
		return model.User{}, err
	}

	if err := s.users.UpdateRole(ctx, user.ID, req.Role); err != nil {
		return model.User{}, err
	}
	user.Role = req.Role
	user.UpdatedAt = s.now().UTC()

	return user, s.sessions.Sync(ctx, user)
}

// DeleteUser removes the account and its session, so any outstanding
// refresh token stops working immediately.
func (s *UserService) DeleteUser(ctx context.Context, actorID string, id string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.sessions.End(ctx, id); err != nil {
		return err
	}

	if user.Avatar != nil {
		if err := s.images.Destroy(ctx, user.Avatar.PublicID); err != nil {
			slog.Warn("avatar of deleted user not removed", "user_id", id, "error", err)
		}
	}

	s.bus.Publish(event.New(event.TypeUserDeleted, actorID, model.CourseUser{ID: user.ID, Name: user.Name, Email: user.Email}))
	return nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
