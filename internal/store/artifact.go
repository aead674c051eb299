package store

import (
	"context"
	"errors"

	"github.com/mitradev/ssogate/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// unexpired is the shared lazy-expiry predicate. Expired rows are
// semantically absent on every read path, whether or not the purge
// sweep has removed them yet.
const unexpired = "(expires_at IS NULL OR expires_at > ?)"

// PutArtifact inserts or overwrites the artifact row for its (kind, key)
// pair. Idempotent per key: a second call replaces the payload and
// expiry rather than duplicating the row.
func (s *Store) PutArtifact(ctx context.Context, artifact *models.GrantArtifact) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "kind"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"payload", "user_code", "uid", "grant_id", "expires_at",
		}),
	}).Create(artifact).Error
}

// GetArtifact returns the live artifact for (kind, key), or
// ErrRecordNotFound when the row is missing or expired.
func (s *Store) GetArtifact(
	ctx context.Context,
	kind models.ArtifactKind,
	key string,
) (*models.GrantArtifact, error) {
	var artifact models.GrantArtifact
	err := s.db.WithContext(ctx).
		Where("kind = ? AND key = ?", kind, key).
		Where(unexpired, now()).
		First(&artifact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &artifact, nil
}

// GetArtifactByUID looks an artifact up by its secondary uid index
func (s *Store) GetArtifactByUID(
	ctx context.Context,
	kind models.ArtifactKind,
	uid string,
) (*models.GrantArtifact, error) {
	var artifact models.GrantArtifact
	err := s.db.WithContext(ctx).
		Where("kind = ? AND uid = ?", kind, uid).
		Where(unexpired, now()).
		First(&artifact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &artifact, nil
}

// ConsumeArtifact atomically removes the live artifact for (kind, key)
// and returns it. Exactly one of any set of concurrent callers wins; the
// rest get ErrArtifactConsumed. The delete by primary key is the commit
// point, so a replayed code or rotated refresh token can never verify
// twice.
func (s *Store) ConsumeArtifact(
	ctx context.Context,
	kind models.ArtifactKind,
	key string,
) (*models.GrantArtifact, error) {
	artifact, err := s.GetArtifact(ctx, kind, key)
	if err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).
		Where("id = ?", artifact.ID).
		Delete(&models.GrantArtifact{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrArtifactConsumed
	}
	return artifact, nil
}

// DeleteArtifact removes the artifact regardless of expiry state
func (s *Store) DeleteArtifact(
	ctx context.Context,
	kind models.ArtifactKind,
	key string,
) error {
	return s.db.WithContext(ctx).
		Where("kind = ? AND key = ?", kind, key).
		Delete(&models.GrantArtifact{}).Error
}

// RevokeArtifactsByGrantID deletes every artifact in a token family.
// Used to revoke refresh tokens and related records in one step.
func (s *Store) RevokeArtifactsByGrantID(ctx context.Context, grantID string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("grant_id = ?", grantID).
		Delete(&models.GrantArtifact{})
	return res.RowsAffected, res.Error
}

// RevokeArtifactsByUID deletes every artifact of a kind owned by a user
func (s *Store) RevokeArtifactsByUID(
	ctx context.Context,
	kind models.ArtifactKind,
	uid string,
) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("kind = ? AND uid = ?", kind, uid).
		Delete(&models.GrantArtifact{})
	return res.RowsAffected, res.Error
}

// PurgeExpiredArtifacts removes rows whose expiry has passed. Reads
// already treat them as absent; this reclaims the space.
func (s *Store) PurgeExpiredArtifacts(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now()).
		Delete(&models.GrantArtifact{})
	return res.RowsAffected, res.Error
}

// CountArtifacts returns the number of live artifacts of a kind
func (s *Store) CountArtifacts(ctx context.Context, kind models.ArtifactKind) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.GrantArtifact{}).
		Where("kind = ?", kind).
		Where(unexpired, now()).
		Count(&count).Error
	return count, err
}
