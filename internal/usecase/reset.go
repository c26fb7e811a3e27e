package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nbekenov/authsvc/internal/domain"
	"github.com/nbekenov/authsvc/internal/email"
	"github.com/nbekenov/authsvc/internal/metrics"
	"github.com/nbekenov/authsvc/internal/password"
	"github.com/nbekenov/authsvc/internal/repository"
)

// ResetManager issues password-reset tokens and consumes them to replace a
// user's password. Tokens are single-use: consumption swaps the password and
// clears the token in one write.
type ResetManager struct {
	users         repository.UserRepository
	hasher        password.Hasher
	email         email.Sender
	resetLinkBase string
}

func NewResetManager(users repository.UserRepository, hasher password.Hasher, sender email.Sender, resetLinkBase string) *ResetManager {
	return &ResetManager{
		users:         users,
		hasher:        hasher,
		email:         sender,
		resetLinkBase: resetLinkBase,
	}
}

// Issue generates a fresh reset token for the user, stores it (overwriting
// any prior unconsumed token) and emails the reset link. Returns
// domain.ErrUserNotFound for an unknown email.
func (m *ResetManager) Issue(ctx context.Context, emailAddr string) (string, error) {
	user, err := m.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	token := uuid.NewString()
	if err := m.users.Update(ctx, user.ID, domain.UserUpdate{ResetToken: &token}); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	link := m.resetLinkBase + "/reset_password?token=" + token
	subject := "Reset your password"
	body := fmt.Sprintf(
		`<p>Click the link below to choose a new password:</p><p><a href="%s">%s</a></p>`,
		link, link,
	)
	if err := m.email.Send(ctx, user.Email, subject, body); err != nil {
		return "", fmt.Errorf("send reset email: %w", err)
	}

	metrics.ResetsRequestedTotal.Inc()
	return token, nil
}

// Consume hashes newPassword and, in one atomic update, replaces the user's
// password and clears the token. Returns domain.ErrInvalidToken if no user
// holds the token, so a consumed token cannot be replayed.
func (m *ResetManager) Consume(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return domain.ErrInvalidToken
	}

	user, err := m.users.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidToken
		}
		return fmt.Errorf("find user by reset token: %w", err)
	}

	hashed, err := m.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	cleared := ""
	err = m.users.Update(ctx, user.ID, domain.UserUpdate{
		HashedPassword: &hashed,
		ResetToken:     &cleared,
	})
	if err != nil {
		return fmt.Errorf("apply password reset: %w", err)
	}

	metrics.ResetsCompletedTotal.Inc()
	return nil
}
