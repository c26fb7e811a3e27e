package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbekenov/authsvc/internal/domain"
	"github.com/nbekenov/authsvc/internal/infrastructure/memory"
	"github.com/nbekenov/authsvc/internal/password"
	"github.com/nbekenov/authsvc/internal/usecase"
)

func newResetFixture(t *testing.T, sender *fakeSender) (*usecase.ResetManager, *memory.UserRepository, *domain.User) {
	t.Helper()
	repo := memory.NewUserRepository()
	hasher := password.NewBcryptHasher(4)

	hashed, err := hasher.Hash("old-pw")
	require.NoError(t, err)
	user, err := repo.Add(context.Background(), "a@example.com", hashed)
	require.NoError(t, err)

	return usecase.NewResetManager(repo, hasher, sender, testResetLinkBase), repo, user
}

func TestIssue_UnknownEmail_ReturnsNotFound(t *testing.T) {
	m, _, _ := newResetFixture(t, &fakeSender{})

	_, err := m.Issue(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestIssue_EmailsLinkCarryingStoredToken(t *testing.T) {
	var capturedTo, capturedBody string
	sender := &fakeSender{
		send: func(_ context.Context, to, _, body string) error {
			capturedTo = to
			capturedBody = body
			return nil
		},
	}
	m, repo, user := newResetFixture(t, sender)

	token, err := m.Issue(context.Background(), "a@example.com")
	require.NoError(t, err)

	assert.Equal(t, "a@example.com", capturedTo)
	assert.Contains(t, capturedBody, testResetLinkBase+"/reset_password?token="+token)

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetToken)
	assert.Equal(t, token, *stored.ResetToken)
}

func TestIssue_Twice_InvalidatesFirstToken(t *testing.T) {
	m, _, _ := newResetFixture(t, &fakeSender{})
	ctx := context.Background()

	first, err := m.Issue(ctx, "a@example.com")
	require.NoError(t, err)
	second, err := m.Issue(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	err = m.Consume(ctx, first, "new-pw")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	assert.NoError(t, m.Consume(ctx, second, "new-pw"))
}

func TestIssue_SendFailure_Propagates(t *testing.T) {
	sendErr := errors.New("smtp unavailable")
	sender := &fakeSender{
		send: func(_ context.Context, _, _, _ string) error { return sendErr },
	}
	m, _, _ := newResetFixture(t, sender)

	_, err := m.Issue(context.Background(), "a@example.com")
	assert.ErrorIs(t, err, sendErr)
}

func TestConsume_SwapsPasswordAndClearsTokenAtomically(t *testing.T) {
	m, repo, user := newResetFixture(t, &fakeSender{})
	ctx := context.Background()

	before, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)

	token, err := m.Issue(ctx, "a@example.com")
	require.NoError(t, err)

	require.NoError(t, m.Consume(ctx, token, "new-pw"))

	after, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, after.ResetToken)
	assert.NotEqual(t, before.HashedPassword, after.HashedPassword)

	ok, err := password.NewBcryptHasher(4).Verify(after.HashedPassword, "new-pw")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConsume_UnknownOrEmptyToken_ReturnsInvalidToken(t *testing.T) {
	m, _, _ := newResetFixture(t, &fakeSender{})
	ctx := context.Background()

	err := m.Consume(ctx, "no-such-token", "new-pw")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	err = m.Consume(ctx, "", "new-pw")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestConsume_EmptyNewPassword_FailsBeforeAnyWrite(t *testing.T) {
	m, repo, user := newResetFixture(t, &fakeSender{})
	ctx := context.Background()

	token, err := m.Issue(ctx, "a@example.com")
	require.NoError(t, err)

	err = m.Consume(ctx, token, "")
	require.ErrorIs(t, err, password.ErrEmptyPassword)

	// Token survives a failed consume; nothing was partially applied.
	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetToken)
	assert.Equal(t, token, *stored.ResetToken)
}
