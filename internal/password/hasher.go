// Package password hashes and verifies user credentials.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// DummyHash is a well-formed bcrypt hash used as a verification target when
// the looked-up user does not exist. The result is discarded; the point is
// that login latency does not reveal whether an email is registered.
const DummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Hasher turns a plaintext password into a verifiable secret and checks
// candidates against it.
type Hasher interface {
	// Hash produces a salted hash of password. Hashing the same password
	// twice yields different hashes.
	Hash(password string) (string, error)

	// Verify reports whether password matches hashed. Returns (false, nil)
	// on a plain mismatch and an error only for malformed hashes.
	Verify(hashed, password string) (bool, error)
}

// BcryptHasher implements Hasher using bcrypt. The cost is the work factor
// embedded in every produced hash.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. A cost outside bcrypt's allowed
// range falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify compares in constant time; bcrypt re-derives the hash using the
// salt and cost embedded in hashed.
func (h *BcryptHasher) Verify(hashed, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("verify password: %w", err)
}
