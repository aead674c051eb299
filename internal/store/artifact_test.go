package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mitradev/ssogate/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New("sqlite", ":memory:")
	require.NoError(t, err)
	return s
}

func createTestArtifact(
	t *testing.T,
	s *Store,
	kind models.ArtifactKind,
	key string,
	expiresIn time.Duration,
) *models.GrantArtifact {
	t.Helper()
	expiresAt := time.Now().Add(expiresIn)
	artifact := &models.GrantArtifact{
		Kind:      kind,
		Key:       key,
		Payload:   models.ArtifactPayload{"client_id": "client-1"},
		UID:       "user-1",
		GrantID:   uuid.New().String(),
		ExpiresAt: &expiresAt,
	}
	require.NoError(t, s.PutArtifact(context.Background(), artifact))
	return artifact
}

func TestPutArtifact_UpsertSameKey(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestArtifact(t, s, models.ArtifactAuthorizationCode, "key-1", time.Minute)

	// Second put with the same (kind, key) replaces, never duplicates
	newExpiry := time.Now().Add(2 * time.Hour)
	err := s.PutArtifact(ctx, &models.GrantArtifact{
		Kind:      models.ArtifactAuthorizationCode,
		Key:       "key-1",
		Payload:   models.ArtifactPayload{"client_id": "client-2"},
		UID:       "user-2",
		GrantID:   "grant-2",
		ExpiresAt: &newExpiry,
	})
	require.NoError(t, err)

	count, err := s.CountArtifacts(ctx, models.ArtifactAuthorizationCode)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := s.GetArtifact(ctx, models.ArtifactAuthorizationCode, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "client-2", got.Payload["client_id"])
	assert.Equal(t, "grant-2", got.GrantID)
}

func TestPutArtifact_SameKeyDifferentKind(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestArtifact(t, s, models.ArtifactAuthorizationCode, "shared", time.Minute)
	createTestArtifact(t, s, models.ArtifactRefreshToken, "shared", time.Minute)

	codes, err := s.CountArtifacts(ctx, models.ArtifactAuthorizationCode)
	require.NoError(t, err)
	refresh, err := s.CountArtifacts(ctx, models.ArtifactRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), codes)
	assert.Equal(t, int64(1), refresh)
}

func TestGetArtifact_ExpiredIsAbsent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestArtifact(t, s, models.ArtifactAuthorizationCode, "expired", -time.Minute)

	_, err := s.GetArtifact(ctx, models.ArtifactAuthorizationCode, "expired")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestGetArtifact_NeverExpires(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	err := s.PutArtifact(ctx, &models.GrantArtifact{
		Kind: models.ArtifactGrant,
		Key:  "durable",
		UID:  "user-1",
	})
	require.NoError(t, err)

	got, err := s.GetArtifact(ctx, models.ArtifactGrant, "durable")
	require.NoError(t, err)
	assert.Nil(t, got.ExpiresAt)
}

func TestConsumeArtifact_SingleUse(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	artifact := createTestArtifact(t, s, models.ArtifactAuthorizationCode, "once", time.Minute)

	got, err := s.ConsumeArtifact(ctx, models.ArtifactAuthorizationCode, "once")
	require.NoError(t, err)
	assert.Equal(t, artifact.GrantID, got.GrantID)

	// Replay fails: the row is gone
	_, err = s.ConsumeArtifact(ctx, models.ArtifactAuthorizationCode, "once")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestConsumeArtifact_ConcurrentSingleWinner(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestArtifact(t, s, models.ArtifactAuthorizationCode, "contested", time.Minute)

	const attempts = 8
	start := make(chan struct{})
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			<-start
			_, err := s.ConsumeArtifact(ctx, models.ArtifactAuthorizationCode, "contested")
			results <- err
		}()
	}
	close(start)

	winners := 0
	for i := 0; i < attempts; i++ {
		err := <-results
		if err == nil {
			winners++
			continue
		}
		// A loser either lost the delete race or read after the delete
		assert.True(t,
			errors.Is(err, ErrArtifactConsumed) || errors.Is(err, ErrRecordNotFound),
			"unexpected consume error: %v", err)
	}
	assert.Equal(t, 1, winners)
}

func TestConsumeArtifact_Expired(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestArtifact(t, s, models.ArtifactRefreshToken, "stale", -time.Second)

	_, err := s.ConsumeArtifact(ctx, models.ArtifactRefreshToken, "stale")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRevokeArtifactsByGrantID_Cascade(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	grantID := uuid.New().String()
	expiresAt := time.Now().Add(time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.PutArtifact(ctx, &models.GrantArtifact{
			Kind:      models.ArtifactRefreshToken,
			Key:       fmt.Sprintf("family-%d", i),
			UID:       "user-1",
			GrantID:   grantID,
			ExpiresAt: &expiresAt,
		}))
	}
	// Unrelated family survives
	other := createTestArtifact(t, s, models.ArtifactRefreshToken, "other", time.Hour)

	deleted, err := s.RevokeArtifactsByGrantID(ctx, grantID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	_, err = s.GetArtifact(ctx, models.ArtifactRefreshToken, "other")
	assert.NoError(t, err)
	assert.NotEqual(t, grantID, other.GrantID)
}

func TestRevokeArtifactsByUID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	expiresAt := time.Now().Add(time.Hour)
	for i := 0; i < 2; i++ {
		require.NoError(t, s.PutArtifact(ctx, &models.GrantArtifact{
			Kind:      models.ArtifactRefreshToken,
			Key:       fmt.Sprintf("mine-%d", i),
			UID:       "victim",
			GrantID:   uuid.New().String(),
			ExpiresAt: &expiresAt,
		}))
	}
	createTestArtifact(t, s, models.ArtifactRefreshToken, "theirs", time.Hour)

	deleted, err := s.RevokeArtifactsByUID(ctx, models.ArtifactRefreshToken, "victim")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	count, err := s.CountArtifacts(ctx, models.ArtifactRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPurgeExpiredArtifacts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestArtifact(t, s, models.ArtifactAuthorizationCode, "dead-1", -time.Hour)
	createTestArtifact(t, s, models.ArtifactRefreshToken, "dead-2", -time.Minute)
	createTestArtifact(t, s, models.ArtifactRefreshToken, "alive", time.Hour)

	// Never-expiring rows must survive the sweep
	require.NoError(t, s.PutArtifact(ctx, &models.GrantArtifact{
		Kind: models.ArtifactGrant,
		Key:  "durable",
	}))

	purged, err := s.PurgeExpiredArtifacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	_, err = s.GetArtifact(ctx, models.ArtifactRefreshToken, "alive")
	assert.NoError(t, err)
	_, err = s.GetArtifact(ctx, models.ArtifactGrant, "durable")
	assert.NoError(t, err)
}

func TestCountArtifacts_SkipsExpired(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestArtifact(t, s, models.ArtifactRefreshToken, "live-1", time.Hour)
	createTestArtifact(t, s, models.ArtifactRefreshToken, "live-2", time.Hour)
	createTestArtifact(t, s, models.ArtifactRefreshToken, "gone", -time.Hour)

	count, err := s.CountArtifacts(ctx, models.ArtifactRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGetArtifactByUID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	artifact := createTestArtifact(t, s, models.ArtifactSession, "sess-key", time.Hour)

	got, err := s.GetArtifactByUID(ctx, models.ArtifactSession, "user-1")
	require.NoError(t, err)
	assert.Equal(t, artifact.Key, got.Key)

	_, err = s.GetArtifactByUID(ctx, models.ArtifactSession, "nobody")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
