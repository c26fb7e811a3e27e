package repository

import (
	"context"

	"github.com/nbekenov/authsvc/internal/domain"
)

// UserRepository is the storage contract for user records. Implementations
// must make Add and Update atomic with respect to concurrent callers on the
// same record, and must enforce uniqueness of email, session_token and
// reset_token at write time.
type UserRepository interface {
	// Add creates a user with no session or reset token.
	// Returns domain.ErrDuplicateUser if the email is taken.
	Add(ctx context.Context, email, hashedPassword string) (*domain.User, error)

	// Lookups return domain.ErrUserNotFound on zero matches.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindBySessionToken(ctx context.Context, token string) (*domain.User, error)
	FindByResetToken(ctx context.Context, token string) (*domain.User, error)

	// Update applies every field named in upd as one atomic write.
	// Returns domain.ErrUserNotFound if no such id, domain.ErrEmptyUpdate
	// if upd names nothing.
	Update(ctx context.Context, id string, upd domain.UserUpdate) error
}
