// Package memory provides an in-memory UserRepository with the same
// semantics as the postgres implementation. It backs tests and DB-less local
// runs; every instance owns its own state, there is no process-wide map.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nbekenov/authsvc/internal/domain"
)

type UserRepository struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]string // email -> id
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Add(_ context.Context, email, hashedPassword string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return nil, domain.ErrDuplicateUser
	}

	now := time.Now()
	u := &domain.User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.byID[u.ID] = u
	r.byEmail[email] = u.ID

	clone := *u
	return &clone, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *r.byID[id]
	return &clone, nil
}

func (r *UserRepository) FindBySessionToken(_ context.Context, token string) (*domain.User, error) {
	return r.findByToken(func(u *domain.User) *string { return u.SessionToken }, token)
}

func (r *UserRepository) FindByResetToken(_ context.Context, token string) (*domain.User, error) {
	return r.findByToken(func(u *domain.User) *string { return u.ResetToken }, token)
}

func (r *UserRepository) findByToken(field func(*domain.User) *string, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUserNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if t := field(u); t != nil && *t == token {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Update applies every named field under the lock, so concurrent updates to
// one record never interleave. A pointer to the empty string clears a token.
func (r *UserRepository) Update(_ context.Context, id string, upd domain.UserUpdate) error {
	if upd.IsEmpty() {
		return domain.ErrEmptyUpdate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}

	if upd.Email != nil {
		delete(r.byEmail, u.Email)
		u.Email = *upd.Email
		r.byEmail[u.Email] = u.ID
	}
	if upd.HashedPassword != nil {
		u.HashedPassword = *upd.HashedPassword
	}
	if upd.SessionToken != nil {
		u.SessionToken = tokenOrNil(*upd.SessionToken)
	}
	if upd.ResetToken != nil {
		u.ResetToken = tokenOrNil(*upd.ResetToken)
	}
	u.UpdatedAt = time.Now()
	return nil
}

func tokenOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
