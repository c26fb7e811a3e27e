package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/nbekenov/authsvc/internal/domain"
	"github.com/nbekenov/authsvc/internal/email"
	"github.com/nbekenov/authsvc/internal/metrics"
	"github.com/nbekenov/authsvc/internal/password"
	"github.com/nbekenov/authsvc/internal/repository"
)

// AuthUsecase is the facade the transport layer talks to. It owns
// registration and login and delegates session and reset lifecycles to the
// respective managers.
type AuthUsecase struct {
	users    repository.UserRepository
	hasher   password.Hasher
	sessions *SessionManager
	resets   *ResetManager
}

func NewAuthUsecase(users repository.UserRepository, hasher password.Hasher, sender email.Sender, resetLinkBase string) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		hasher:   hasher,
		sessions: NewSessionManager(users),
		resets:   NewResetManager(users, hasher, sender, resetLinkBase),
	}
}

// Register hashes the password and creates the user. Any duplicate outcome
// surfaces as domain.ErrAlreadyRegistered; callers cannot tell a store-level
// duplicate from a racing registration.
func (u *AuthUsecase) Register(ctx context.Context, emailAddr, plaintext string) (*domain.User, error) {
	hashed, err := u.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Add(ctx, emailAddr, hashed)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("add user: %w", err)
	}

	metrics.RegistrationsTotal.Inc()
	return user, nil
}

// ValidLogin reports whether the credentials match a registered user.
// Unknown email and wrong password both return (false, nil); when the email
// is unknown a dummy hash is still verified so the two cases take comparable
// time. Only storage failures produce an error.
func (u *AuthUsecase) ValidLogin(ctx context.Context, emailAddr, plaintext string) (bool, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_, _ = u.hasher.Verify(password.DummyHash, plaintext)
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return false, nil
		}
		return false, fmt.Errorf("find user: %w", err)
	}

	ok, err := u.hasher.Verify(user.HashedPassword, plaintext)
	if err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}

	if ok {
		metrics.LoginsTotal.WithLabelValues("success").Inc()
	} else {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
	}
	return ok, nil
}

// CreateSession issues a session token for the user.
func (u *AuthUsecase) CreateSession(ctx context.Context, emailAddr string) (string, error) {
	return u.sessions.Create(ctx, emailAddr)
}

// GetEmailForSession resolves a session token to the owning email.
func (u *AuthUsecase) GetEmailForSession(ctx context.Context, token string) (string, error) {
	return u.sessions.Resolve(ctx, token)
}

// GetUserForSession resolves a session token to the owning user record.
func (u *AuthUsecase) GetUserForSession(ctx context.Context, token string) (*domain.User, error) {
	return u.sessions.ResolveUser(ctx, token)
}

// DestroySession revokes the user's session, if any.
func (u *AuthUsecase) DestroySession(ctx context.Context, userID string) error {
	return u.sessions.Destroy(ctx, userID)
}

// RequestReset issues a password-reset token for the user.
func (u *AuthUsecase) RequestReset(ctx context.Context, emailAddr string) (string, error) {
	return u.resets.Issue(ctx, emailAddr)
}

// ResetPassword consumes a reset token and installs the new password.
func (u *AuthUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	return u.resets.Consume(ctx, token, newPassword)
}
