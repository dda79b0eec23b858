package auth_test

import (
	"context"
	"database/sql"
	"sync"

	auth "github.com/baseplatform/go-admin-auth"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockLogger implements auth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(auth.Identity), args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (auth.Identity, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(auth.Identity), args.Error(1)
}

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

// testIdentity is a plain auth.Identity fixture
type testIdentity struct {
	id           string
	name         string
	email        string
	profileImage string
	role         string
}

func (i testIdentity) ID() string           { return i.id }
func (i testIdentity) Name() string         { return i.name }
func (i testIdentity) Email() string        { return i.email }
func (i testIdentity) ProfileImage() string { return i.profileImage }
func (i testIdentity) Role() string         { return i.role }

// testConfig is a plain auth.Config fixture
type testConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
	audience        []string
	tokenLookup     string
	authScheme      string
	cookieName      string
	cookieMaxAge    int
	production      bool
}

func newTestConfig() testConfig {
	return testConfig{
		signingKey:      "test-signing-key",
		tokenExpiration: 24,
		issuer:          "test-issuer",
		audience:        []string{"test-audience"},
		tokenLookup:     auth.DefaultTokenLookup,
		authScheme:      auth.DefaultAuthScheme,
		cookieName:      auth.DefaultCookieName,
		cookieMaxAge:    auth.DefaultCookieMaxAge,
	}
}

func (c testConfig) GetSigningKey() string   { return c.signingKey }
func (c testConfig) GetTokenExpiration() int { return c.tokenExpiration }
func (c testConfig) GetIssuer() string       { return c.issuer }
func (c testConfig) GetAudience() []string   { return c.audience }
func (c testConfig) GetTokenLookup() string  { return c.tokenLookup }
func (c testConfig) GetAuthScheme() string   { return c.authScheme }
func (c testConfig) GetCookieName() string   { return c.cookieName }
func (c testConfig) GetCookieMaxAge() int    { return c.cookieMaxAge }
func (c testConfig) IsProduction() bool      { return c.production }

// memoryUsers is a map backed auth.Users used to exercise commands and
// the HTTP controller without a database.
type memoryUsers struct {
	mu      sync.Mutex
	byEmail map[string]*auth.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]*auth.User{}}
}

func notFoundErr() error {
	return errors.New("record not found", errors.CategoryNotFound)
}

func (s *memoryUsers) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byEmail[auth.NormalizeEmail(email)]
	if !ok {
		return nil, notFoundErr()
	}
	clone := *user
	return &clone, nil
}

func (s *memoryUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.User, error) {
	return s.GetByEmail(ctx, email)
}

func (s *memoryUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.byEmail {
		if user.ID.String() == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, notFoundErr()
}

func (s *memoryUsers) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	return s.GetByID(ctx, id)
}

func (s *memoryUsers) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := auth.NormalizeEmail(user.Email)
	if _, ok := s.byEmail[email]; ok {
		return nil, errors.New("duplicate email", errors.CategoryConflict)
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = auth.RoleUser
	}
	user.Email = email

	clone := *user
	s.byEmail[email] = &clone
	return user, nil
}

func (s *memoryUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	return s.Register(ctx, user)
}

func (s *memoryUsers) UpdateProfile(ctx context.Context, id uuid.UUID, name, profileImage string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.byEmail {
		if user.ID == id {
			user.Name = name
			user.ProfileImage = profileImage
			clone := *user
			return &clone, nil
		}
	}
	return nil, notFoundErr()
}

func (s *memoryUsers) UpdateProfileTx(ctx context.Context, tx bun.IDB, id uuid.UUID, name, profileImage string) (*auth.User, error) {
	return s.UpdateProfile(ctx, id, name, profileImage)
}

func (s *memoryUsers) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.byEmail {
		if user.ID == id {
			user.PasswordHash = passwordHash
			return nil
		}
	}
	return notFoundErr()
}

func (s *memoryUsers) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	return s.ResetPassword(ctx, id, passwordHash)
}

var _ auth.Users = (*memoryUsers)(nil)

// memoryRepoManager satisfies auth.RepositoryManager without a real
// transaction. The callback runs against the shared store.
type memoryRepoManager struct {
	users *memoryUsers
}

func newMemoryRepoManager() *memoryRepoManager {
	return &memoryRepoManager{users: newMemoryUsers()}
}

func (m *memoryRepoManager) Users() auth.Users { return m.users }

func (m *memoryRepoManager) Validate() error { return nil }

func (m *memoryRepoManager) MustValidate() {}

func (m *memoryRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return f(ctx, bun.Tx{})
	}
}

var _ auth.RepositoryManager = (*memoryRepoManager)(nil)
