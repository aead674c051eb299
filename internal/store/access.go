package store

import (
	"context"
	"errors"

	"github.com/mitradev/ssogate/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Access control operations

// GetLiveAccessGrant returns the current active, unexpired grant for a
// (user, client) pair, or ErrRecordNotFound. Historical rows for the
// same pair are ignored.
func (s *Store) GetLiveAccessGrant(
	ctx context.Context,
	userID, clientID string,
) (*models.AccessGrant, error) {
	var grant models.AccessGrant
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND client_id = ? AND is_active = ?", userID, clientID, true).
		Where(unexpired, now()).
		Order("granted_at DESC").
		First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &grant, nil
}

// UserGroupIDs returns ids of every access group the user belongs to
func (s *Store) UserGroupIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.AccessGroupUser{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	return ids, err
}

// AnyGroupHasClient reports whether any of the given groups contains the
// client. One IN query instead of a query per group.
func (s *Store) AnyGroupHasClient(
	ctx context.Context,
	groupIDs []string,
	clientID string,
) (bool, error) {
	if len(groupIDs) == 0 {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.AccessGroupClient{}).
		Where("group_id IN ? AND client_id = ?", groupIDs, clientID).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) CreateAccessGrant(ctx context.Context, grant *models.AccessGrant) error {
	if grant.ID == "" {
		grant.ID = uuid.New().String()
	}
	if grant.GrantedAt.IsZero() {
		grant.GrantedAt = now()
	}
	return s.db.WithContext(ctx).Create(grant).Error
}

// RevokeAccessGrant deactivates every grant row for the pair
func (s *Store) RevokeAccessGrant(ctx context.Context, userID, clientID string) error {
	return s.db.WithContext(ctx).
		Model(&models.AccessGrant{}).
		Where("user_id = ? AND client_id = ?", userID, clientID).
		Update("is_active", false).Error
}

// ListAccessGrantsByUser returns all grant rows for a user, newest first
func (s *Store) ListAccessGrantsByUser(
	ctx context.Context,
	userID string,
) ([]models.AccessGrant, error) {
	var grants []models.AccessGrant
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("granted_at DESC").
		Find(&grants).Error
	return grants, err
}

// Access group operations

func (s *Store) CreateAccessGroup(ctx context.Context, group *models.AccessGroup) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Create(group).Error
}

func (s *Store) GetAccessGroup(ctx context.Context, id string) (*models.AccessGroup, error) {
	var group models.AccessGroup
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (s *Store) ListAccessGroups(ctx context.Context) ([]models.AccessGroup, error) {
	var groups []models.AccessGroup
	err := s.db.WithContext(ctx).Order("name").Find(&groups).Error
	return groups, err
}

func (s *Store) DeleteAccessGroup(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.AccessGroupUser{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.AccessGroupClient{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.AccessGroup{}).Error
	})
}

// AddUserToGroup is idempotent; re-adding an existing member is a no-op
func (s *Store) AddUserToGroup(ctx context.Context, groupID, userID string) error {
	member := models.AccessGroupUser{GroupID: groupID, UserID: userID}
	err := s.db.WithContext(ctx).Create(&member).Error
	if err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err)) {
		return nil
	}
	return err
}

func (s *Store) RemoveUserFromGroup(ctx context.Context, groupID, userID string) error {
	return s.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.AccessGroupUser{}).Error
}

// AddClientToGroup is idempotent like AddUserToGroup
func (s *Store) AddClientToGroup(ctx context.Context, groupID, clientID string) error {
	member := models.AccessGroupClient{GroupID: groupID, ClientID: clientID}
	err := s.db.WithContext(ctx).Create(&member).Error
	if err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err)) {
		return nil
	}
	return err
}

func (s *Store) RemoveClientFromGroup(ctx context.Context, groupID, clientID string) error {
	return s.db.WithContext(ctx).
		Where("group_id = ? AND client_id = ?", groupID, clientID).
		Delete(&models.AccessGroupClient{}).Error
}
