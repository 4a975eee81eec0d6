// Package session owns the signed-in identity and its persisted token.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/bnema/pot-cli/internal/domain"
	"github.com/bnema/pot-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

// TokenKey is the secret-store key the session token is persisted under.
const TokenKey = "pot/session_token"

// Listener observes every session change. It runs synchronously on the goroutine that
// made the change and must not call back into mutating Store methods.
type Listener func(domain.Session)

type Store struct {
	auth    ports.AuthAPI
	secrets ports.SecretStore
	logger  logrus.FieldLogger

	mu      sync.RWMutex
	current domain.Session

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

func New(auth ports.AuthAPI, secrets ports.SecretStore, logger logrus.FieldLogger) *Store {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Store{
		auth:      auth,
		secrets:   secrets,
		logger:    logger.WithField("component", "session"),
		listeners: map[int]Listener{},
	}
}

func (s *Store) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token satisfies httpapi.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

func (s *Store) Subscribe(listener Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = listener

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// Restore validates a persisted token. Any failure leaves the store signed out and is
// reported only in the debug log; a missing token is the normal first-run state.
func (s *Store) Restore(ctx context.Context) domain.Session {
	token, err := s.secrets.Get(ctx, TokenKey)
	if err != nil {
		if !errors.Is(err, domain.ErrSecretNotFound) {
			s.logger.WithError(err).Debug("read persisted token")
		}
		s.set(domain.Session{})
		return domain.Session{}
	}

	user, err := s.auth.Me(ctx, token)
	if err != nil {
		s.logger.WithError(err).Debug("persisted token rejected, signing out")
		s.forgetToken(ctx)
		s.set(domain.Session{})
		return domain.Session{}
	}

	next := domain.NewSession(token, user)
	s.set(next)
	return next
}

func (s *Store) Login(ctx context.Context, email, password string) (domain.Session, error) {
	token, user, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}
	return s.establish(ctx, token, user), nil
}

func (s *Store) Register(ctx context.Context, reg domain.Registration) (domain.Session, error) {
	if err := reg.Validate(); err != nil {
		return domain.Session{}, fmt.Errorf("register: %w", err)
	}
	token, user, err := s.auth.Register(ctx, reg)
	if err != nil {
		return domain.Session{}, fmt.Errorf("register: %w", err)
	}
	return s.establish(ctx, token, user), nil
}

// UpdateProfile replaces the signed-in user with the server's answer. The token is
// untouched.
func (s *Store) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error) {
	current := s.Current()
	if !current.Authenticated() {
		return domain.User{}, fmt.Errorf("update profile: %w", domain.ErrUnauthenticated)
	}

	user, err := s.auth.UpdateProfile(ctx, update)
	if err != nil {
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}

	s.mu.Lock()
	if s.current.Token != current.Token {
		s.mu.Unlock()
		return domain.User{}, fmt.Errorf("update profile: %w", domain.ErrUnauthenticated)
	}
	s.current = domain.NewSession(current.Token, user)
	next := s.current
	s.mu.Unlock()

	s.notify(next)
	return user, nil
}

// Logout always succeeds from the caller's point of view.
func (s *Store) Logout(ctx context.Context) {
	s.forgetToken(ctx)
	s.set(domain.Session{})
}

// Invalidate signs out after the server rejected the credential. It is a no-op when
// already signed out so repeated 401s notify once.
func (s *Store) Invalidate(ctx context.Context) {
	if !s.Current().Authenticated() {
		return
	}
	s.logger.Info("session rejected by server, signing out")
	s.Logout(ctx)
}

func (s *Store) establish(ctx context.Context, token string, user domain.User) domain.Session {
	next := domain.NewSession(token, user)
	if err := s.secrets.Put(ctx, TokenKey, token); err != nil {
		s.logger.WithError(err).Warn("persist session token")
	}
	s.set(next)
	return next
}

func (s *Store) forgetToken(ctx context.Context) {
	if err := s.secrets.Delete(context.WithoutCancel(ctx), TokenKey); err != nil {
		s.logger.WithError(err).Warn("delete persisted session token")
	}
}

func (s *Store) set(next domain.Session) {
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	s.notify(next)
}

func (s *Store) notify(next domain.Session) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if listener, ok := s.listeners[id]; ok {
			listeners = append(listeners, listener)
		}
	}
	s.listenersMu.Unlock()

	for _, listener := range listeners {
		listener(next)
	}
}
