package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"learnhub/internal/model"
	"learnhub/pkg/apierror"
)

type sessionAuthenticator interface {
	Authenticate(ctx context.Context, accessToken string) (model.User, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, model.User, error)
}

type contextKey string

const principalContextKey contextKey = "principal"

// Principal is the authenticated caller, loaded from the cached session.
type Principal struct {
	User model.User
}

type AuthMiddleware struct {
	sessions sessionAuthenticator
	cookies  Cookies
	onError  func(http.ResponseWriter, error)
}

// NewAuthMiddleware builds the access check. onError renders failures so the
// middleware answers with the same envelope as handlers.
func NewAuthMiddleware(sessions sessionAuthenticator, cookies Cookies, onError func(http.ResponseWriter, error)) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, cookies: cookies, onError: onError}
}

// RequireAuth accepts the access cookie or a bearer header. An expired or
// missing access token is renewed from the refresh cookie before the request
// continues.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		access := accessToken(r)

		if access != "" {
			user, err := m.sessions.Authenticate(ctx, access)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(withPrincipal(ctx, user)))
				return
			}
			if !errors.Is(err, model.ErrTokenExpired) {
				m.onError(w, err)
				return
			}
		}

		refresh, err := r.Cookie(RefreshCookieName)
		if err != nil || refresh.Value == "" {
			if access != "" {
				m.onError(w, model.ErrTokenExpired)
				return
			}
			m.onError(w, apierror.Unauthorized("Please login to access this resource"))
			return
		}

		pair, user, err := m.sessions.Refresh(ctx, refresh.Value)
		if err != nil {
			m.onError(w, err)
			return
		}

		m.cookies.Set(w, pair)
		next.ServeHTTP(w, r.WithContext(withPrincipal(ctx, user)))
	})
}

func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := map[string]struct{}{}
	for _, role := range allowedRoles {
		roleSet[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				m.onError(w, apierror.Unauthorized("Please login to access this resource"))
				return
			}

			if _, exists := roleSet[strings.ToLower(principal.User.Role)]; !exists {
				m.onError(w, apierror.Forbidden(fmt.Sprintf("Role: %s is not allowed to access this resource", principal.User.Role)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(Principal)
	return principal, ok
}

// WithPrincipal is used by tests and internal callers that authenticate
// outside RequireAuth.
func WithPrincipal(ctx context.Context, user model.User) context.Context {
	return withPrincipal(ctx, user)
}

func withPrincipal(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, principalContextKey, Principal{User: user})
}

func accessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
