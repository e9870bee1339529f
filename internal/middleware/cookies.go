package middleware

import (
	"net/http"

	"learnhub/internal/model"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// Cookies writes the token pair as httpOnly cookies whose lifetime follows
// the token TTLs.
type Cookies struct {
	Secure bool
}

func (c Cookies) Set(w http.ResponseWriter, pair model.TokenPair) {
	http.SetCookie(w, c.cookie(AccessCookieName, pair.AccessToken, int(pair.AccessTTL.Seconds())))
	http.SetCookie(w, c.cookie(RefreshCookieName, pair.RefreshToken, int(pair.RefreshTTL.Seconds())))
}

// Clear overwrites both cookies with an empty value that expires at once.
func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(AccessCookieName, "", 1))
	http.SetCookie(w, c.cookie(RefreshCookieName, "", 1))
}

func (c Cookies) cookie(name string, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
