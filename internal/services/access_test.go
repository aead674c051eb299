package services

import (
	"context"
	"testing"
	"time"

	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccessService(t *testing.T, s *store.Store) *AccessService {
	t.Helper()
	return NewAccessService(s, disabledAudit(t, s))
}

func TestHasAccess_OpenClient(t *testing.T) {
	s := setupTestStore(t)
	svc := newAccessService(t, s)
	user := createTestUser(t, s, models.UserStatusActive)
	client := createTestClient(t, s, nil)

	ok, err := svc.HasAccess(context.Background(), user, client)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAccess_GatedClientDeniedByDefault(t *testing.T) {
	s := setupTestStore(t)
	svc := newAccessService(t, s)
	user := createTestUser(t, s, models.UserStatusActive)
	client := createTestClient(t, s, func(c *models.Client) {
		c.RequireAccessGrant = true
	})

	ok, err := svc.HasAccess(context.Background(), user, client)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasAccess_DirectGrant(t *testing.T) {
	s := setupTestStore(t)
	svc := newAccessService(t, s)
	user := createTestUser(t, s, models.UserStatusActive)
	client := createTestClient(t, s, func(c *models.Client) {
		c.RequireAccessGrant = true
	})
	ctx := context.Background()

	require.NoError(t, svc.GrantAccess(ctx, &models.AccessGrant{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ClientID:  client.ClientID,
		GrantedBy: "admin-1",
		GrantedAt: time.Now(),
		IsActive:  true,
	}))

	ok, err := svc.HasAccess(ctx, user, client)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAccess_ExpiredGrant(t *testing.T) {
	s := setupTestStore(t)
	svc := newAccessService(t, s)
	user := createTestUser(t, s, models.UserStatusActive)
	client := createTestClient(t, s, func(c *models.Client) {
		c.RequireAccessGrant = true
	})
	ctx := context.Background()

	expired := time.Now().Add(-time.Hour)
	require.NoError(t, svc.GrantAccess(ctx, &models.AccessGrant{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ClientID:  client.ClientID,
		GrantedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: &expired,
		IsActive:  true,
	}))

	ok, err := svc.HasAccess(ctx, user, client)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasAccess_RevokedGrant(t *testing.T) {
	s := setupTestStore(t)
	svc := newAccessService(t, s)
	user := createTestUser(t, s, models.UserStatusActive)
	client := createTestClient(t, s, func(c *models.Client) {
		c.RequireAccessGrant = true
	})
	ctx := context.Background()

	require.NoError(t, svc.GrantAccess(ctx, &models.AccessGrant{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ClientID:  client.ClientID,
		GrantedAt: time.Now(),
		IsActive:  true,
	}))
	require.NoError(t, svc.RevokeAccess(ctx, user.ID, client.ClientID, "admin-1"))

	ok, err := svc.HasAccess(ctx, user, client)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasAccess_GroupMembership(t *testing.T) {
	s := setupTestStore(t)
	svc := newAccessService(t, s)
	user := createTestUser(t, s, models.UserStatusActive)
	client := createTestClient(t, s, func(c *models.Client) {
		c.RequireAccessGrant = true
	})
	ctx := context.Background()

	group := &models.AccessGroup{ID: uuid.New().String(), Name: "Engineering"}
	require.NoError(t, svc.CreateGroup(ctx, group, "admin-1"))
	require.NoError(t, svc.SetGroupMembership(ctx, group.ID, user.ID, "admin-1", true))

	// Group alone is not enough, the client must be in it too
	ok, err := svc.HasAccess(ctx, user, client)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.SetGroupClient(ctx, group.ID, client.ClientID, "admin-1", true))
	ok, err = svc.HasAccess(ctx, user, client)
	require.NoError(t, err)
	assert.True(t, ok)

	// Removing the user cuts access again
	require.NoError(t, svc.SetGroupMembership(ctx, group.ID, user.ID, "admin-1", false))
	ok, err = svc.HasAccess(ctx, user, client)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteGroup_CutsAccess(t *testing.T) {
	s := setupTestStore(t)
	svc := newAccessService(t, s)
	user := createTestUser(t, s, models.UserStatusActive)
	client := createTestClient(t, s, func(c *models.Client) {
		c.RequireAccessGrant = true
	})
	ctx := context.Background()

	group := &models.AccessGroup{ID: uuid.New().String(), Name: "Temporary"}
	require.NoError(t, svc.CreateGroup(ctx, group, "admin-1"))
	require.NoError(t, svc.SetGroupMembership(ctx, group.ID, user.ID, "admin-1", true))
	require.NoError(t, svc.SetGroupClient(ctx, group.ID, client.ClientID, "admin-1", true))

	require.NoError(t, svc.DeleteGroup(ctx, group.ID, "admin-1"))

	ok, err := svc.HasAccess(ctx, user, client)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.GetGroup(ctx, group.ID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestListUserGrants(t *testing.T) {
	s := setupTestStore(t)
	svc := newAccessService(t, s)
	user := createTestUser(t, s, models.UserStatusActive)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		client := createTestClient(t, s, nil)
		require.NoError(t, svc.GrantAccess(ctx, &models.AccessGrant{
			ID:        uuid.New().String(),
			UserID:    user.ID,
			ClientID:  client.ClientID,
			GrantedAt: time.Now(),
			IsActive:  true,
		}))
	}

	grants, err := svc.ListUserGrants(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, grants, 2)
}

func TestListGroups(t *testing.T) {
	s := setupTestStore(t)
	svc := newAccessService(t, s)
	ctx := context.Background()

	require.NoError(t, svc.CreateGroup(ctx, &models.AccessGroup{
		ID: uuid.New().String(), Name: "A",
	}, "admin-1"))
	require.NoError(t, svc.CreateGroup(ctx, &models.AccessGroup{
		ID: uuid.New().String(), Name: "B",
	}, "admin-1"))

	groups, err := svc.ListGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}
