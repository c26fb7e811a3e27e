package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nbekenov/authsvc/internal/domain"
	"github.com/nbekenov/authsvc/internal/metrics"
	"github.com/nbekenov/authsvc/internal/repository"
)

// SessionManager issues, resolves and revokes per-user session tokens.
// A user holds at most one session at a time; creating a new one silently
// replaces the old token.
type SessionManager struct {
	users repository.UserRepository
}

func NewSessionManager(users repository.UserRepository) *SessionManager {
	return &SessionManager{users: users}
}

// Create generates a fresh random session token for the user and stores it,
// overwriting any prior token. Returns domain.ErrUserNotFound for an unknown
// email.
func (m *SessionManager) Create(ctx context.Context, email string) (string, error) {
	user, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	token := uuid.NewString()
	if err := m.users.Update(ctx, user.ID, domain.UserUpdate{SessionToken: &token}); err != nil {
		return "", fmt.Errorf("store session token: %w", err)
	}

	metrics.SessionsCreatedTotal.Inc()
	return token, nil
}

// Resolve returns the email owning the session token, or
// domain.ErrUnauthenticated if no user holds it.
func (m *SessionManager) Resolve(ctx context.Context, token string) (string, error) {
	user, err := m.ResolveUser(ctx, token)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

// ResolveUser returns the user owning the session token. The transport layer
// needs the full record to revoke a session by user ID on logout.
func (m *SessionManager) ResolveUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	user, err := m.users.FindBySessionToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("find user by session token: %w", err)
	}
	return user, nil
}

// Destroy clears the user's session token. Destroying an absent session, or
// the session of an unknown user, is a no-op.
func (m *SessionManager) Destroy(ctx context.Context, userID string) error {
	cleared := ""
	err := m.users.Update(ctx, userID, domain.UserUpdate{SessionToken: &cleared})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("clear session token: %w", err)
	}

	metrics.SessionsDestroyedTotal.Inc()
	return nil
}
