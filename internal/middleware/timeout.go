package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds handler time. http.TimeoutHandler does not support
// hijacking, so websocket routes must be mounted outside it.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := `{"success":false,"message":"request timed out","code":"REQUEST_TIMEOUT"}`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
