package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nbekenov/authsvc/internal/domain"
)

// querier is the subset of *pgxpool.Pool the repository needs.
// Satisfied by pgxmock.PgxPoolIface in tests.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements repository.UserRepository on PostgreSQL.
// Uniqueness of email, session_token and reset_token is enforced by unique
// indexes, so the duplicate check and the insert are one atomic statement.
type UserRepository struct {
	pool querier
}

func NewUserRepository(pool querier) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, hashed_password, session_token, reset_token, created_at, updated_at`

func (r *UserRepository) Add(ctx context.Context, email, hashedPassword string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, hashed_password) VALUES ($1, $2) RETURNING `+userColumns,
		email, hashedPassword,
	)

	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrDuplicateUser
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findBy(ctx, "id", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findBy(ctx, "email", email)
}

func (r *UserRepository) FindBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findBy(ctx, "session_token", token)
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findBy(ctx, "reset_token", token)
}

func (r *UserRepository) findBy(ctx context.Context, column, value string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = $1`,
		value,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by %s: %w", column, err)
	}
	return u, nil
}

// Update applies the named fields in a single UPDATE. A pointer to the empty
// string clears a token column to NULL.
func (r *UserRepository) Update(ctx context.Context, id string, upd domain.UserUpdate) error {
	if upd.IsEmpty() {
		return domain.ErrEmptyUpdate
	}

	set := make([]string, 0, 5)
	args := make([]any, 0, 5)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.HashedPassword != nil {
		add("hashed_password", *upd.HashedPassword)
	}
	if upd.SessionToken != nil {
		add("session_token", textOrNull(*upd.SessionToken))
	}
	if upd.ResetToken != nil {
		add("reset_token", textOrNull(*upd.ResetToken))
	}
	set = append(set, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d",
		strings.Join(set, ", "), len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.SessionToken, &u.ResetToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func textOrNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}
