package domain

import (
	"errors"
	"time"
)

var (
	// Store-level errors.
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user with this email already exists")
	ErrEmptyUpdate   = errors.New("update names no fields")

	// Facade-level errors.
	ErrAlreadyRegistered = errors.New("email is already registered")
	ErrInvalidToken      = errors.New("reset token is invalid")
	ErrUnauthenticated   = errors.New("unauthenticated")
)

// User is the canonical identity record. ID and Email are immutable after
// creation. SessionToken is set while the user has an active session (at most
// one at a time); ResetToken is set between reset request and consumption.
type User struct {
	ID             string
	Email          string
	HashedPassword string
	SessionToken   *string
	ResetToken     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserUpdate names the fields an update may touch. Nil means "leave as is";
// a non-nil pointer to an empty string clears a token column. Fields outside
// this set cannot be expressed, so there is no disallowed-field error path.
type UserUpdate struct {
	Email          *string
	HashedPassword *string
	SessionToken   *string
	ResetToken     *string
}

// IsEmpty reports whether the update would touch nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Email == nil && u.HashedPassword == nil && u.SessionToken == nil && u.ResetToken == nil
}
