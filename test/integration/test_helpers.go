//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"learnhub/internal/cache"
	"learnhub/internal/config"
	"learnhub/internal/database"
	"learnhub/internal/event"
	"learnhub/internal/handler"
	"learnhub/internal/mail"
	"learnhub/internal/media"
	"learnhub/internal/middleware"
	"learnhub/internal/model"
	"learnhub/internal/repository"
	"learnhub/internal/router"
	"learnhub/internal/service"
	"learnhub/internal/token"
	"learnhub/internal/websocket"
)

type capturingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *capturingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *capturingMailer) last(t *testing.T, to string) mail.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == to {
			return m.sent[i]
		}
	}
	t.Fatalf("no mail sent to %s", to)
	return mail.Message{}
}

var activationCodePattern = regexp.MustCompile(`>(\d{4})</p>`)

type testStack struct {
	server        *httptest.Server
	db            *database.DB
	redis         *miniredis.Miniredis
	mailer        *capturingMailer
	notifications *repository.NotificationRepository
}

// newTestStack wires the same components the server binary does, against a
// real Postgres and an in-process redis.
func newTestStack(t *testing.T, mutate func(cfg *config.Config)) *testStack {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := &config.Config{
		AppEnv:                "test",
		RequestTimeout:        10 * time.Second,
		BodyLimit:             1 << 20,
		CORSOrigins:           []string{"*"},
		RateLimitRPM:          1000,
		AuthRateLimitRPM:      1000,
		ActivationSecret:      "activation-secret",
		AccessTokenSecret:     "access-secret",
		RefreshTokenSecret:    "refresh-secret",
		ActivationTTL:         5 * time.Minute,
		AccessTokenTTL:        5 * time.Minute,
		RefreshTokenTTL:       72 * time.Hour,
		MediaRoot:             t.TempDir(),
		MediaPublicURL:        "/media",
		NotificationRetention: 30 * 24 * time.Hour,
	}
	if mutate != nil {
		mutate(cfg)
	}

	ctx := context.Background()
	db, err := database.New(ctx, databaseURL, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	_, err = db.Pool.Exec(ctx, `TRUNCATE notifications, orders, user_courses, user_products, courses, products, users CASCADE`)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store, err := media.NewLocalStore(cfg.MediaRoot, cfg.MediaPublicURL)
	require.NoError(t, err)

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	bus := event.NewBus()
	mailer := &capturingMailer{}
	images := media.NewUploader(store)
	catalog := cache.NewCatalog(rdb)

	tokens := token.NewService(token.Options{
		ActivationSecret: cfg.ActivationSecret,
		AccessSecret:     cfg.AccessTokenSecret,
		RefreshSecret:    cfg.RefreshTokenSecret,
		ActivationTTL:    cfg.ActivationTTL,
		AccessTTL:        cfg.AccessTokenTTL,
		RefreshTTL:       cfg.RefreshTokenTTL,
	})
	sessions := service.NewSessionService(tokens, cache.NewSessionStore(rdb, cfg.RefreshTokenTTL))

	userService := service.NewUserService(userRepo, tokens, sessions, images, mailer, bus)
	productService := service.NewProductService(productRepo, catalog, images, bus, true)
	courseService := service.NewCourseService(courseRepo, catalog, images, mailer, bus, true)
	orderService := service.NewOrderService(orderRepo, userRepo, courseRepo, productRepo, sessions, mailer, bus)
	notificationService := service.NewNotificationService(notificationRepo, bus)
	hub := websocket.NewHub(bus, cfg.CORSOrigins)

	workerCtx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, worker := range []func(context.Context){notificationService.Run, hub.Run} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(workerCtx)
		}()
	}
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	registry := prometheus.NewRegistry()
	cookies := middleware.Cookies{}
	authMiddleware := middleware.NewAuthMiddleware(sessions, cookies, handler.WriteError)

	appRouter := router.New(cfg, authMiddleware, middleware.NewMetrics(registry), router.Handlers{
		Auth:         handler.NewAuthHandler(userService, sessions, cookies),
		User:         handler.NewUserHandler(userService),
		Product:      handler.NewProductHandler(productService),
		Course:       handler.NewCourseHandler(courseService),
		Order:        handler.NewOrderHandler(orderService),
		Notification: handler.NewNotificationHandler(notificationService),
		Health: handler.NewHealthHandler(map[string]handler.Check{
			"postgres": db.Health,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Stream:        handler.NewNotificationStreamHandler(hub),
		Media:         http.FileServer(http.Dir(store.Root())),
		MetricsGather: registry,
	})

	server := httptest.NewServer(appRouter)
	t.Cleanup(server.Close)

	return &testStack{
		server:        server,
		db:            db,
		redis:         mr,
		mailer:        mailer,
		notifications: notificationRepo,
	}
}

// newClient returns a client with its own cookie jar, so each one acts as a
// separate browser session.
func (s *testStack) newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func (s *testStack) doJSON(t *testing.T, client *http.Client, method string, path string, body any) (*http.Response, model.APIResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope model.APIResponse
	_ = json.NewDecoder(resp.Body).Decode(&envelope)
	return resp, envelope
}

// decodeData re-encodes the envelope's generic data into a typed value.
func decodeData[T any](t *testing.T, envelope model.APIResponse) T {
	t.Helper()
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// registerAndLogin runs the full registration flow and leaves the client
// holding session cookies.
func (s *testStack) registerAndLogin(t *testing.T, client *http.Client, name string, email string) model.User {
	t.Helper()

	resp, envelope := s.doJSON(t, client, http.MethodPost, "/api/v1/registration", model.RegistrationRequest{
		Name: name, Email: email, Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, envelope.Message)
	registration := decodeData[model.RegistrationResponse](t, envelope)

	match := activationCodePattern.FindStringSubmatch(s.mailer.last(t, email).HTML)
	require.Len(t, match, 2, "activation mail carries a 4 digit code")

	resp, envelope = s.doJSON(t, client, http.MethodPost, "/api/v1/activate-user", model.ActivationRequest{
		ActivationToken: registration.ActivationToken,
		ActivationCode:  match[1],
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, envelope.Message)

	return s.login(t, client, email)
}

func (s *testStack) login(t *testing.T, client *http.Client, email string) model.User {
	t.Helper()

	resp, envelope := s.doJSON(t, client, http.MethodPost, "/api/v1/login", model.LoginRequest{
		Email: email, Password: "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, envelope.Message)
	return decodeData[model.LoginResponse](t, envelope).User
}

// promote flips the role in Postgres; the caller must log in again for the
// cached session to pick it up.
func (s *testStack) promote(t *testing.T, email string) {
	t.Helper()
	_, err := s.db.Pool.Exec(context.Background(), `UPDATE users SET role = 'admin' WHERE email = $1`, email)
	require.NoError(t, err)
}
