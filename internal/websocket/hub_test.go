package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/internal/event"
	"learnhub/internal/model"
)

func startHub(t *testing.T, origins []string) (*event.InMemoryBus, *httptest.Server) {
	t.Helper()

	bus := event.NewBus()
	hub := NewHub(bus, origins)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, "admin-1")
	}))
	t.Cleanup(srv.Close)
	return bus, srv
}

func TestHub_ForwardsNotifications(t *testing.T) {
	bus, srv := startHub(t, []string{"*"})

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	received := make(chan model.Notification, 1)
	go func() {
		var n model.Notification
		if err := conn.ReadJSON(&n); err == nil {
			received <- n
		}
	}()

	// Other event types are not streamed.
	bus.Publish(event.New(event.TypeProductCreated, "admin-1", model.Product{ID: "p1"}))

	var got model.Notification
	require.Eventually(t, func() bool {
		bus.Publish(event.New(event.TypeNotificationCreated, "u1", model.Notification{ID: "n1", Title: "New Order"}))
		select {
		case got = <-received:
			return true
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, "n1", got.ID)
	assert.Equal(t, "New Order", got.Title)
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	_, srv := startHub(t, []string{"https://app.example.com"})

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com"})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://app.example.com")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://other.example.com")
	assert.False(t, check(r))
}
