package model

import "errors"

var (
	// User related errors
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailAlreadyExists    = errors.New("email already exist")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrOldPasswordMismatch   = errors.New("invalid old password")
	ErrPasswordNotSet        = errors.New("password login is not enabled for this account")
	ErrInvalidActivationCode = errors.New("invalid activation code")

	// Token and session related errors
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrSessionExpired = errors.New("session expired")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotEligible  = errors.New("not eligible to access this resource")

	// Catalog related errors
	ErrProductNotFound  = errors.New("product not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrContentNotFound  = errors.New("course content not found")
	ErrQuestionNotFound = errors.New("question not found")

	// Order and notification related errors
	ErrAlreadyPurchased      = errors.New("item already purchased")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrMediaStoreUnavailable = errors.New("media storage is not configured")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
