package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"learnhub/internal/model"
	"learnhub/pkg/apierror"
)

// HandlerFunc is an http handler that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts h so every returned error is rendered by WriteError.
func Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			WriteError(w, err)
		}
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeMessage(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// bind decodes a JSON body into dst and runs its validate tags.
func bind(r *http.Request, dst any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return maxErr
		}
		if errors.Is(err, io.EOF) {
			return apierror.BadRequest("request body is required")
		}
		return apierror.New("BAD_REQUEST", "invalid JSON body", err.Error(), http.StatusBadRequest)
	}

	return validate.Struct(dst)
}

// pathID reads a uuid path parameter.
func pathID(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", invalidID(name)
	}
	return id.String(), nil
}

func invalidID(name string) *apierror.APIError {
	return apierror.New("INVALID_ID", "Resource not found. Invalid: "+name, "", http.StatusBadRequest)
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{model.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND", "User not found"},
	{model.ErrEmailAlreadyExists, http.StatusBadRequest, "EMAIL_EXISTS", "Email already exist"},
	{model.ErrInvalidCredentials, http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid email or password"},
	{model.ErrOldPasswordMismatch, http.StatusBadRequest, "INVALID_PASSWORD", "Old password doesn't match"},
	{model.ErrPasswordNotSet, http.StatusBadRequest, "PASSWORD_NOT_SET", "Password login is not enabled for this account"},
	{model.ErrInvalidActivationCode, http.StatusBadRequest, "INVALID_ACTIVATION_CODE", "Invalid activation code"},
	{model.ErrTokenExpired, http.StatusBadRequest, "TOKEN_EXPIRED", "JWT token is expired"},
	{model.ErrTokenMalformed, http.StatusBadRequest, "INVALID_TOKEN", "Invalid JWT token"},
	{model.ErrSessionExpired, http.StatusUnauthorized, "SESSION_EXPIRED", "Couldn't refresh token, please login again"},
	{model.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "Please login to access this resource"},
	{model.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Access denied"},
	{model.ErrNotEligible, http.StatusForbidden, "FORBIDDEN", "You are not eligible to access this resource"},
	{model.ErrProductNotFound, http.StatusNotFound, "NOT_FOUND", "Product not found"},
	{model.ErrCourseNotFound, http.StatusNotFound, "NOT_FOUND", "Course not found"},
	{model.ErrContentNotFound, http.StatusNotFound, "NOT_FOUND", "Course content not found"},
	{model.ErrQuestionNotFound, http.StatusNotFound, "NOT_FOUND", "Question not found"},
	{model.ErrNotificationNotFound, http.StatusNotFound, "NOT_FOUND", "Notification not found"},
	{model.ErrAlreadyPurchased, http.StatusBadRequest, "ALREADY_PURCHASED", "You have already purchased this item"},
	{model.ErrMediaStoreUnavailable, http.StatusServiceUnavailable, "MEDIA_UNAVAILABLE", "Media storage is not available"},
	{model.ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST", "Invalid input"},
}

// WriteError is the single translation point from errors to the JSON error
// envelope. Unclassified errors are logged and reported as 500.
func WriteError(w http.ResponseWriter, err error) {
	status, code, message := classify(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Message: message,
		Code:    code,
	})
}

func classify(err error) (int, string, string) {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus, apiErr.Code, apiErr.Message
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code, m.message
		}
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest, "VALIDATION_ERROR", validationMessage(validationErrs)
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return http.StatusBadRequest, "DUPLICATE", fmt.Sprintf("Duplicate %s entered", constraintField(pgErr.ConstraintName))
		case "22P02":
			return http.StatusBadRequest, "INVALID_ID", "Resource not found. Invalid: id"
		}
	}

	if uuid.IsInvalidLengthError(err) {
		return http.StatusBadRequest, "INVALID_ID", "Resource not found. Invalid: id"
	}

	slog.Error("unhandled error", "error", err)
	return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
}

func validationMessage(errs validator.ValidationErrors) string {
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			fields = append(fields, fe.Field()+" is required")
		case "email":
			fields = append(fields, fe.Field()+" must be a valid email")
		case "min", "max", "len":
			fields = append(fields, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		case "oneof":
			fields = append(fields, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			fields = append(fields, fe.Field()+" is invalid")
		}
	}
	return strings.Join(fields, "; ")
}

// constraintField turns "users_email_key" into "email".
func constraintField(constraint string) string {
	name := strings.TrimSuffix(constraint, "_key")
	if _, field, ok := strings.Cut(name, "_"); ok && field != "" {
		return field
	}
	if name == "" {
		return "value"
	}
	return name
}
