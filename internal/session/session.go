package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"postify/internal/core"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

var (
	ErrEmptyToken = errors.New("empty token")
)

// Session holds the bearer token and the signed-in user snapshot.
type Session struct {
	store  core.KeyValueStore
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	token    string
	user     *core.User
	onLogout []func()
}

func New(store core.KeyValueStore, logger *slog.Logger) *Session {
	return &Session{
		store:  store,
		logger: logger.With("component", "session.Session"),
		now:    time.Now,
	}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

func (s *Session) User() (core.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return core.User{}, false
	}
	return *s.user, true
}

// Authenticated reports whether a usable token is present. Expired JWTs are not usable.
func (s *Session) Authenticated() bool {
	token := s.Token()
	if token == "" {
		return false
	}
	return !expired(token, s.now())
}

func (s *Session) Identity() core.FeedIdentity {
	if !s.Authenticated() {
		return core.FeedIdentity{}
	}

	user, _ := s.User()
	return core.FeedIdentity{Authenticated: true, UserID: user.ID}
}

// OnLogout registers fn to run after every logout.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onLogout = append(s.onLogout, fn)
}

// Restore loads a previously persisted token and user.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.store.Get(ctx, tokenKey)
	if err != nil {
		if errors.Is(err, core.ErrKeyNotFound) {
			return nil
		}
		return err
	}

	var user *core.User
	raw, err := s.store.Get(ctx, userKey)
	switch {
	case err == nil:
		user = &core.User{}
		if err := json.Unmarshal(raw, user); err != nil {
			s.logger.Warn("discarding unreadable user snapshot", "error", err)
			user = nil
		}
	case !errors.Is(err, core.ErrKeyNotFound):
		return err
	}

	s.mu.Lock()
	s.token = string(token)
	s.user = user
	s.mu.Unlock()

	s.logger.Debug("session restored", "authenticated", s.Authenticated())
	return nil
}

func (s *Session) Login(ctx context.Context, token string, user core.User) error {
	if token == "" {
		return ErrEmptyToken
	}

	if err := s.store.Set(ctx, tokenKey, []byte(token)); err != nil {
		return err
	}
	if err := s.persistUser(ctx, user); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	s.logger.Info("logged in", "username", user.Username)
	return nil
}

// UpdateUser replaces the stored user snapshot, for example after a profile change.
func (s *Session) UpdateUser(ctx context.Context, user core.User) error {
	if err := s.persistUser(ctx, user); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	return nil
}

// Logout clears memory and storage, then runs the logout hooks.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	hooks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()

	err := errors.Join(
		s.store.Delete(ctx, tokenKey),
		s.store.Delete(ctx, userKey),
	)

	for _, hook := range hooks {
		hook()
	}

	s.logger.Info("logged out")
	return err
}

func (s *Session) persistUser(ctx context.Context, user core.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return s.store.Set(ctx, userKey, raw)
}

// expired reads exp without verifying the signature. Opaque tokens never expire here.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
