package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"healthdash/internal/auth"
	"healthdash/internal/model"
	"healthdash/internal/repository"
)

// SessionTokens signs and verifies session tokens.
type SessionTokens interface {
	IssueSession(name string) (string, time.Time, error)
	ParseSession(token string) (auth.Claims, error)
}

// Session is returned on login.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// SessionService is the mock login. Any well-formed credentials are accepted and the
// derived user is persisted until logout.
type SessionService interface {
	Login(ctx context.Context, creds auth.Credentials, register bool) (Session, error)
	Current(ctx context.Context) (model.User, error)
	Logout(ctx context.Context) error
	// Verify checks a bearer token against the stored user.
	Verify(ctx context.Context, token string) (model.User, error)
}

type sessionService struct {
	settings repository.SettingsRepository
	tokens   SessionTokens
}

// NewSessionService constructs a SessionService.
func NewSessionService(settings repository.SettingsRepository, tokens SessionTokens) SessionService {
	return &sessionService{settings: settings, tokens: tokens}
}

func (s *sessionService) Login(ctx context.Context, creds auth.Credentials, register bool) (Session, error) {
	user, err := auth.Authenticate(creds, register)
	if err != nil {
		field := "email"
		if errors.Is(err, auth.ErrShortPassword) {
			field = "password"
		}
		return Session{}, invalid(field, err.Error())
	}

	token, exp, err := s.tokens.IssueSession(user.Name)
	if err != nil {
		return Session{}, err
	}
	if err := repository.Save(ctx, s.settings, repository.KeyUser, user); err != nil {
		return Session{}, fmt.Errorf("persist user: %w", err)
	}
	return Session{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *sessionService) Current(ctx context.Context) (model.User, error) {
	user, err := repository.Load(ctx, s.settings, repository.KeyUser, model.User{})
	if err != nil {
		return model.User{}, err
	}
	if user.Name == "" {
		return model.User{}, ErrNoSession
	}
	return user, nil
}

func (s *sessionService) Logout(ctx context.Context) error {
	return s.settings.Delete(ctx, repository.KeyUser)
}

func (s *sessionService) Verify(ctx context.Context, token string) (model.User, error) {
	claims, err := s.tokens.ParseSession(token)
	if err != nil {
		return model.User{}, err
	}
	user, err := s.Current(ctx)
	if err != nil {
		return model.User{}, err
	}
	if user.Name != claims.Subject {
		return model.User{}, ErrNoSession
	}
	return user, nil
}
