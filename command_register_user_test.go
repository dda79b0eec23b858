package auth_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	auth "github.com/baseplatform/go-admin-auth"
	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestRegisterUserHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a user with a hashed credential", func(t *testing.T) {
		repo := newMemoryRepoManager()
		handler := auth.NewRegisterUserHandler(repo)

		var created *auth.User
		err := handler.Execute(ctx, auth.RegisterUserMessage{
			Name:     "  Test User  ",
			Email:    "Test@Example.com",
			Password: "password123",
			OnResponse: func(user *auth.User) {
				created = user
			},
		})
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.Equal(t, "Test User", created.Name)
		assert.Equal(t, "test@example.com", created.Email)
		assert.Equal(t, auth.RoleUser, created.Role)
		assert.NotEqual(t, "password123", created.PasswordHash)
		assert.NoError(t, auth.ComparePasswordAndHash("password123", created.PasswordHash))
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := newMemoryRepoManager()
		handler := auth.NewRegisterUserHandler(repo)

		msg := auth.RegisterUserMessage{
			Name:     "Test User",
			Email:    "test@example.com",
			Password: "password123",
		}
		require.NoError(t, handler.Execute(ctx, msg))

		msg.Email = "TEST@example.com"
		err := handler.Execute(ctx, msg)
		assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	})

	t.Run("empty password", func(t *testing.T) {
		repo := newMemoryRepoManager()
		handler := auth.NewRegisterUserHandler(repo)

		err := handler.Execute(ctx, auth.RegisterUserMessage{
			Name:  "Test User",
			Email: "test@example.com",
		})
		assert.Error(t, err)
	})

	t.Run("store failure is not a conflict", func(t *testing.T) {
		store := &brokenUsers{memoryUsers: newMemoryUsers()}
		repo := &brokenRepoManager{store: store}
		handler := auth.NewRegisterUserHandler(repo)

		err := handler.Execute(ctx, auth.RegisterUserMessage{
			Name:     "Test User",
			Email:    "test@example.com",
			Password: "password123",
		})
		require.Error(t, err)

		// A transient store error must not read as a duplicate email.
		assert.NotErrorIs(t, err, auth.ErrDuplicateEmail)
		assert.False(t, auth.IsConflictError(err))

		var richErr *errors.Error
		require.ErrorAs(t, err, &richErr)
		assert.Equal(t, errors.CategoryInternal, richErr.Category)
	})

	t.Run("cancelled context", func(t *testing.T) {
		repo := newMemoryRepoManager()
		handler := auth.NewRegisterUserHandler(repo)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := handler.Execute(cancelled, auth.RegisterUserMessage{
			Name:     "Test User",
			Email:    "test@example.com",
			Password: "password123",
		})
		assert.Error(t, err)
	})
}

func TestChangePasswordHandler(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*memoryRepoManager, *auth.User) {
		t.Helper()

		repo := newMemoryRepoManager()
		register := auth.NewRegisterUserHandler(repo)

		var created *auth.User
		require.NoError(t, register.Execute(ctx, auth.RegisterUserMessage{
			Name:     "Test User",
			Email:    "test@example.com",
			Password: "password123",
			OnResponse: func(user *auth.User) {
				created = user
			},
		}))

		return repo, created
	}

	t.Run("replaces the credential", func(t *testing.T) {
		repo, user := seed(t)
		handler := auth.NewChangePasswordHandler(repo)

		err := handler.Execute(ctx, auth.ChangePasswordMessage{
			UserID:          user.ID.String(),
			CurrentPassword: "password123",
			NewPassword:     "newPassword456",
		})
		require.NoError(t, err)

		stored, err := repo.Users().GetByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.NoError(t, auth.ComparePasswordAndHash("newPassword456", stored.PasswordHash))
		assert.ErrorIs(t, auth.ComparePasswordAndHash("password123", stored.PasswordHash), auth.ErrMismatchedHashAndPassword)
	})

	t.Run("wrong current password leaves the credential alone", func(t *testing.T) {
		repo, user := seed(t)
		handler := auth.NewChangePasswordHandler(repo)

		err := handler.Execute(ctx, auth.ChangePasswordMessage{
			UserID:          user.ID.String(),
			CurrentPassword: "wrong-password",
			NewPassword:     "newPassword456",
		})
		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)

		stored, err := repo.Users().GetByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.NoError(t, auth.ComparePasswordAndHash("password123", stored.PasswordHash))
	})

	t.Run("malformed user id", func(t *testing.T) {
		repo, _ := seed(t)
		handler := auth.NewChangePasswordHandler(repo)

		err := handler.Execute(ctx, auth.ChangePasswordMessage{
			UserID:          "not-a-uuid",
			CurrentPassword: "password123",
			NewPassword:     "newPassword456",
		})
		assert.Error(t, err)
	})
}

// brokenUsers fails every insert with a plain driver style error.
type brokenUsers struct {
	*memoryUsers
}

func (s *brokenUsers) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	return nil, fmt.Errorf("driver: bad connection")
}

func (s *brokenUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	return s.Register(ctx, user)
}

type brokenRepoManager struct {
	store *brokenUsers
}

func (m *brokenRepoManager) Users() auth.Users { return m.store }

func (m *brokenRepoManager) Validate() error { return nil }

func (m *brokenRepoManager) MustValidate() {}

func (m *brokenRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

var _ auth.RepositoryManager = (*brokenRepoManager)(nil)
