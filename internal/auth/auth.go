// Package auth implements credential handling and bearer-token sessions.
// Passwords are bcrypt hashed; tokens are opaque random values persisted
// server-side with a TTL, so revocation is a row delete.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/supersonicwisd1/result-processing-system/internal/config"
	"github.com/supersonicwisd1/result-processing-system/internal/store"
	"github.com/supersonicwisd1/result-processing-system/pkg/contracts/domain"
)

// ErrInvalidCredentials is returned on a failed login. The caller cannot
// tell an unknown username from a wrong password.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrUnknownRole is returned when registration names a role outside the
// allowed set.
var ErrUnknownRole = errors.New("auth: unknown role")

// Service issues and validates sessions against the store.
type Service struct {
	store  *store.Store
	cfg    config.AuthConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates an auth service.
func NewService(st *store.Store, cfg config.AuthConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, cfg: cfg, logger: logger, now: time.Now}
}

// Register creates a new user with a hashed password.
func (s *Service) Register(ctx context.Context, username, email, password string, role domain.Role, department string) (*domain.User, error) {
	if !domain.AllowedRoles[role] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Department:   department,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("username", username),
		slog.String("role", string(role)))
	return user, nil
}

// Session is an issued bearer token.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// Login verifies credentials and issues a fresh token.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token := uuid.NewString()
	expiresAt := s.now().UTC().Add(s.cfg.TokenTTL)
	if err := s.store.CreateToken(ctx, token, user.ID, expiresAt); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("username", username))
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.store.UserByToken(ctx, token, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	return user, err
}

// Logout invalidates a token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.store.DeleteToken(ctx, token)
}
