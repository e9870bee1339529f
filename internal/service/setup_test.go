package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"learnhub/internal/cache"
	"learnhub/internal/event"
	"learnhub/internal/token"
)

type testEnv struct {
	redis    *miniredis.Miniredis
	client   *redis.Client
	tokens   *token.Service
	sessions *SessionService
	catalog  *cache.Catalog
	users    *MockUserRepository
	images   *MockImageStore
	mailer   *capturingMailer
	bus      *event.InMemoryBus
	userSvc  *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens := token.NewService(token.Options{
		ActivationSecret: "activation-secret",
		AccessSecret:     "access-secret",
		RefreshSecret:    "refresh-secret",
		ActivationTTL:    5 * time.Minute,
		AccessTTL:        5 * time.Minute,
		RefreshTTL:       72 * time.Hour,
	})
	sessions := NewSessionService(tokens, cache.NewSessionStore(client, 72*time.Hour))

	env := &testEnv{
		redis:    mr,
		client:   client,
		tokens:   tokens,
		sessions: sessions,
		catalog:  cache.NewCatalog(client),
		users:    new(MockUserRepository),
		images:   new(MockImageStore),
		mailer:   &capturingMailer{},
		bus:      event.NewBus(),
	}
	env.userSvc = NewUserService(env.users, tokens, sessions, env.images, env.mailer, env.bus)
	env.userSvc.passwordCost = bcrypt.MinCost
	return env
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(hash)
}
