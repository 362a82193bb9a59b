package auth

import (
	"context"
	"log/slog"
	"strings"

	"postify/internal/core"

	"github.com/go-playground/validator/v10"
)

// Sessions stores the outcome of a successful login.
type Sessions interface {
	Login(ctx context.Context, token string, user core.User) error
	Logout(ctx context.Context) error
}

type Service struct {
	api      core.AuthAPI
	sessions Sessions
	notifier core.Notifier
	validate *validator.Validate
	logger   *slog.Logger
}

func NewService(api core.AuthAPI, sessions Sessions, notifier core.Notifier, logger *slog.Logger) *Service {
	return &Service{
		api:      api,
		sessions: sessions,
		notifier: notifier,
		validate: newValidator(),
		logger:   logger.With("component", "auth.Service"),
	}
}

func (s *Service) Login(ctx context.Context, form core.LoginForm) (core.User, error) {
	form.Email = normalizeEmail(form.Email)

	if err := validate(s.validate, form); err != nil {
		s.warn(err.Error())
		return core.User{}, err
	}

	res, err := s.api.Login(ctx, form)
	if err != nil {
		s.report(err)
		return core.User{}, err
	}

	return s.start(ctx, res, "Login successful!")
}

func (s *Service) Register(ctx context.Context, form core.RegisterForm) (core.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = normalizeEmail(form.Email)
	form.Name = strings.TrimSpace(form.Name)

	if err := validate(s.validate, form); err != nil {
		s.warn(err.Error())
		return core.User{}, err
	}

	res, err := s.api.Register(ctx, form)
	if err != nil {
		s.report(err)
		return core.User{}, err
	}

	return s.start(ctx, res, "Registration successful!")
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.sessions.Logout(ctx); err != nil {
		s.logger.Error("failed to clear session", "error", err)
		return err
	}

	if s.notifier != nil {
		s.notifier.Info("Logged out successfully.")
	}
	return nil
}

func (s *Service) start(ctx context.Context, res *core.AuthResult, notice string) (core.User, error) {
	if err := s.sessions.Login(ctx, res.Token, res.User); err != nil {
		s.report(err)
		return core.User{}, err
	}

	if s.notifier != nil {
		s.notifier.Info(notice)
	}
	return res.User, nil
}

func (s *Service) report(err error) {
	s.logger.Error("auth request failed", "error", err)
	if s.notifier != nil {
		s.notifier.Error(err.Error())
	}
}

func (s *Service) warn(msg string) {
	if s.notifier != nil {
		s.notifier.Warn(msg)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
