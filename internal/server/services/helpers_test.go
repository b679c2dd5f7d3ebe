package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/culturehub/internal/logging"
	"github.com/dmitrijs2005/culturehub/internal/server/auth"
	"github.com/dmitrijs2005/culturehub/internal/server/mailer"
	"github.com/dmitrijs2005/culturehub/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type fixture struct {
	repo   *users.InMemoryRepository
	hasher *auth.Hasher
	tokens *auth.TokenIssuer
	clock  *fakeClock
	auth   *AuthService
}

func newFixture() *fixture {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0).UTC()}
	repo := users.NewInMemoryRepository()
	hasher := auth.NewHasher(bcrypt.MinCost, 4)
	tokens := auth.NewTokenIssuer([]byte("test-secret"), time.Hour, clock.Now)
	return &fixture{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		clock:  clock,
		auth:   NewAuthService(repo, hasher, tokens, nopLogger{}),
	}
}
