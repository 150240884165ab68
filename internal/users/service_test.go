package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/pkg/config"
	"github.com/storefronthq/storefront-backend/pkg/db/models"
	"github.com/storefronthq/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefronthq/storefront-backend/pkg/errors"
)

type stubUsersRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User

	lastLogins int
}

func newStubUsersRepo() *stubUsersRepo {
	return &stubUsersRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (r *stubUsersRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, errors.New(`duplicate key value violates unique constraint "idx_users_email"`)
	}
	user.ID = uuid.New()
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	return user, nil
}

func (r *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUsersRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.lastLogins++
	if user, ok := r.byID[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

func (r *stubUsersRepo) UpdateRole(ctx context.Context, id uuid.UUID, role enums.Role) error {
	if user, ok := r.byID[id]; ok {
		user.Role = role
	}
	return nil
}

type stubSessions struct {
	created []string
	revoked []string
}

func (s *stubSessions) Create(ctx context.Context, accessID string) error {
	s.created = append(s.created, accessID)
	return nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubLimiter struct {
	counts map[string]int64
	limits map[string]int64
}

func newStubLimiter() *stubLimiter {
	return &stubLimiter{counts: map[string]int64{}, limits: map[string]int64{}}
}

func (l *stubLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	l.counts[scope]++
	if override, ok := l.limits[scope]; ok {
		limit = override
	}
	return l.counts[scope] <= limit, l.counts[scope], nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "unit-test-secret",
		Issuer:            "storefront-test",
		ExpirationMinutes: 15,
		SessionTTLMinutes: 60,
	}
}

func testPasswordConfig() config.PasswordConfig {
	// small argon params keep the suite fast
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func testRateConfig() config.AuthRateLimitConfig {
	return config.AuthRateLimitConfig{
		LoginWindow:     time.Minute,
		LoginEmailLimit: 5,
		LoginIPLimit:    20,
	}
}

func newTestService(t *testing.T) (Service, *stubUsersRepo, *stubSessions, *stubLimiter) {
	t.Helper()
	repo := newStubUsersRepo()
	sessions := &stubSessions{}
	limiter := newStubLimiter()
	svc, err := NewService(repo, sessions, limiter, testJWTConfig(), testPasswordConfig(), testRateConfig(), nil)
	require.NoError(t, err)
	return svc, repo, sessions, limiter
}

func TestRegisterCreatesCustomer(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:     "  Jamie@Example.COM ",
		Password:  "correct horse",
		FirstName: "Jamie",
		LastName:  "Doe",
	})
	require.NoError(t, err)

	assert.Equal(t, "jamie@example.com", user.Email)
	assert.Equal(t, enums.RoleCustomer, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "jamie@example.com",
		Password: "short",
	})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)

	input := RegisterInput{Email: "jamie@example.com", Password: "correct horse", FirstName: "Jamie", LastName: "Doe"}
	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), input)
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
	assert.Equal(t, "email already registered", appErr.Message())
}

func TestLoginMintsTokenAndSession(t *testing.T) {
	t.Parallel()

	svc, repo, sessions, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "jamie@example.com", Password: "correct horse", FirstName: "Jamie", LastName: "Doe",
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "jamie@example.com",
		Password: "correct horse",
		RemoteIP: "203.0.113.7",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.AccessID)
	require.Len(t, sessions.created, 1)
	assert.Equal(t, result.AccessID, sessions.created[0])
	assert.Equal(t, 1, repo.lastLogins)
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	t.Parallel()

	svc, _, sessions, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "jamie@example.com", Password: "correct horse", FirstName: "Jamie", LastName: "Doe",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginInput{Email: "jamie@example.com", Password: "wrong horse"})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
	assert.Empty(t, sessions.created)
}

func TestLoginUnknownEmailUnauthorized(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "whatever"})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}

func TestLoginDisabledAccountForbidden(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newTestService(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email: "jamie@example.com", Password: "correct horse", FirstName: "Jamie", LastName: "Doe",
	})
	require.NoError(t, err)
	repo.byID[user.ID].IsActive = false

	_, err = svc.Login(context.Background(), LoginInput{Email: "jamie@example.com", Password: "correct horse"})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeForbidden, appErr.Code())
}

func TestLoginRateLimitedPerEmail(t *testing.T) {
	t.Parallel()

	svc, _, _, limiter := newTestService(t)
	limiter.limits["login:email:jamie@example.com"] = 1

	_, err := svc.Login(context.Background(), LoginInput{Email: "jamie@example.com", Password: "whatever"})
	require.Error(t, err) // unknown email, but the attempt still counts

	_, err = svc.Login(context.Background(), LoginInput{Email: "jamie@example.com", Password: "whatever"})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeRateLimit, appErr.Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	svc, _, sessions, _ := newTestService(t)

	require.NoError(t, svc.Logout(context.Background(), "access-123"))
	require.Len(t, sessions.revoked, 1)
	assert.Equal(t, "access-123", sessions.revoked[0])
}
