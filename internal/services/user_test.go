package services

import (
	"context"
	"testing"

	"github.com/mitradev/ssogate/internal/auth"
	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, s *store.Store) *UserService {
	t.Helper()
	return NewUserService(s, auth.NewLocalAuthProvider(s), nil, disabledAudit(t, s))
}

func TestAuthenticate(t *testing.T) {
	s := setupTestStore(t)
	svc := newUserService(t, s)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserRequest{
		EmployeeID: "E-1001",
		Email:      "jamie@example.com",
		Name:       "Jamie Doe",
		Password:   "correct horse battery staple",
	}, "admin-1")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "jamie@example.com", "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Authenticate(ctx, "jamie@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_DisabledUser(t *testing.T) {
	s := setupTestStore(t)
	svc := newUserService(t, s)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserRequest{
		EmployeeID: "E-1002",
		Email:      "disabled@example.com",
		Name:       "Disabled User",
		Password:   "some password",
	}, "admin-1")
	require.NoError(t, err)
	require.NoError(t, svc.SetUserStatus(ctx, user.ID, models.UserStatusDisabled, "admin-1"))

	_, err = svc.Authenticate(ctx, "disabled@example.com", "some password")
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestAuthenticateUpstream(t *testing.T) {
	s := setupTestStore(t)
	svc := newUserService(t, s)
	user := createTestUser(t, s, models.UserStatusActive)
	ctx := context.Background()

	got, err := svc.AuthenticateUpstream(ctx, &auth.OAuthUserInfo{
		Email:     user.Email,
		AvatarURL: "https://avatars.example.com/u/1",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// The avatar was refreshed from the upstream profile
	refreshed, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://avatars.example.com/u/1", refreshed.AvatarURL)
}

func TestAuthenticateUpstream_Rejections(t *testing.T) {
	s := setupTestStore(t)
	svc := newUserService(t, s)
	ctx := context.Background()

	// Upstream sign-in never provisions accounts
	_, err := svc.AuthenticateUpstream(ctx, &auth.OAuthUserInfo{
		Email: "stranger@example.com",
	})
	assert.ErrorIs(t, err, auth.ErrOAuthUnlinked)

	disabled := createTestUser(t, s, models.UserStatusDisabled)
	_, err = svc.AuthenticateUpstream(ctx, &auth.OAuthUserInfo{Email: disabled.Email})
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestListUsers_Pagination(t *testing.T) {
	s := setupTestStore(t)
	svc := newUserService(t, s)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		createTestUser(t, s, models.UserStatusActive)
	}

	users, page, err := svc.ListUsers(ctx, store.PaginationParams{Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, users, 3)
	// Seeded admin plus the five created here
	assert.Equal(t, int64(6), page.Total)
	assert.Equal(t, 2, page.TotalPages)
}
