package services

import (
	"context"
	"errors"

	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/store"
)

// AccessService decides whether a user may proceed past the
// authorization endpoint for a given client. The decision itself has no
// side effects; it runs on every authorization request.
type AccessService struct {
	store        *store.Store
	auditService *AuditService
}

// NewAccessService creates a new access decision service
func NewAccessService(s *store.Store, auditService *AuditService) *AccessService {
	return &AccessService{store: s, auditService: auditService}
}

// HasAccess reports whether the user is authorized to use the client.
// Clients without the require_access_grant flag are open to every
// authenticated user. Otherwise a live direct grant wins, then group
// membership: the user's group ids are fetched once and matched against
// the client in a single query.
func (s *AccessService) HasAccess(
	ctx context.Context,
	user *models.User,
	client *models.Client,
) (bool, error) {
	if !client.RequireAccessGrant {
		return true, nil
	}

	_, err := s.store.GetLiveAccessGrant(ctx, user.ID, client.ClientID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return false, err
	}

	groupIDs, err := s.store.UserGroupIDs(ctx, user.ID)
	if err != nil {
		return false, err
	}
	if len(groupIDs) == 0 {
		return false, nil
	}

	return s.store.AnyGroupHasClient(ctx, groupIDs, client.ClientID)
}

// GrantAccess records an explicit access grant and audits it
func (s *AccessService) GrantAccess(ctx context.Context, grant *models.AccessGrant) error {
	if err := s.store.CreateAccessGrant(ctx, grant); err != nil {
		return err
	}
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventAccessGrantCreated,
		Severity:     models.SeverityInfo,
		ActorUserID:  grant.GrantedBy,
		ResourceType: models.ResourceAccessGrant,
		ResourceID:   grant.ID,
		Action:       "access grant created",
		Details: models.AuditDetails{
			"user_id":   grant.UserID,
			"client_id": grant.ClientID,
		},
		Success: true,
	})
	return nil
}

// RevokeAccess deactivates all grants for the pair and audits it
func (s *AccessService) RevokeAccess(ctx context.Context, userID, clientID, actorID string) error {
	if err := s.store.RevokeAccessGrant(ctx, userID, clientID); err != nil {
		return err
	}
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventAccessGrantRevoked,
		Severity:     models.SeverityWarning,
		ActorUserID:  actorID,
		ResourceType: models.ResourceAccessGrant,
		Action:       "access grant revoked",
		Details: models.AuditDetails{
			"user_id":   userID,
			"client_id": clientID,
		},
		Success: true,
	})
	return nil
}

// ListUserGrants returns the explicit grants recorded for a user
func (s *AccessService) ListUserGrants(
	ctx context.Context,
	userID string,
) ([]models.AccessGrant, error) {
	return s.store.ListAccessGrantsByUser(ctx, userID)
}

// CreateGroup creates an access group
func (s *AccessService) CreateGroup(
	ctx context.Context,
	group *models.AccessGroup,
	actorID string,
) error {
	if err := s.store.CreateAccessGroup(ctx, group); err != nil {
		return err
	}
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventAccessGroupChanged,
		Severity:     models.SeverityInfo,
		ActorUserID:  actorID,
		ResourceType: models.ResourceAccessGroup,
		ResourceID:   group.ID,
		ResourceName: group.Name,
		Action:       "access group created",
		Success:      true,
	})
	return nil
}

// ListGroups returns all access groups
func (s *AccessService) ListGroups(ctx context.Context) ([]models.AccessGroup, error) {
	return s.store.ListAccessGroups(ctx)
}

// GetGroup returns one access group
func (s *AccessService) GetGroup(ctx context.Context, id string) (*models.AccessGroup, error) {
	return s.store.GetAccessGroup(ctx, id)
}

// DeleteGroup removes a group and its memberships
func (s *AccessService) DeleteGroup(ctx context.Context, id, actorID string) error {
	if err := s.store.DeleteAccessGroup(ctx, id); err != nil {
		return err
	}
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventAccessGroupChanged,
		Severity:     models.SeverityWarning,
		ActorUserID:  actorID,
		ResourceType: models.ResourceAccessGroup,
		ResourceID:   id,
		Action:       "access group deleted",
		Success:      true,
	})
	return nil
}

// SetGroupMembership adds or removes a user from a group
func (s *AccessService) SetGroupMembership(
	ctx context.Context,
	groupID, userID, actorID string,
	member bool,
) error {
	var err error
	action := "user added to access group"
	if member {
		err = s.store.AddUserToGroup(ctx, groupID, userID)
	} else {
		err = s.store.RemoveUserFromGroup(ctx, groupID, userID)
		action = "user removed from access group"
	}
	if err != nil {
		return err
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventAccessGroupChanged,
		Severity:     models.SeverityInfo,
		ActorUserID:  actorID,
		ResourceType: models.ResourceAccessGroup,
		ResourceID:   groupID,
		Action:       action,
		Details:      models.AuditDetails{"user_id": userID},
		Success:      true,
	})
	return nil
}

// SetGroupClient adds or removes a client from a group
func (s *AccessService) SetGroupClient(
	ctx context.Context,
	groupID, clientID, actorID string,
	member bool,
) error {
	var err error
	action := "client added to access group"
	if member {
		err = s.store.AddClientToGroup(ctx, groupID, clientID)
	} else {
		err = s.store.RemoveClientFromGroup(ctx, groupID, clientID)
		action = "client removed from access group"
	}
	if err != nil {
		return err
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventAccessGroupChanged,
		Severity:     models.SeverityInfo,
		ActorUserID:  actorID,
		ResourceType: models.ResourceAccessGroup,
		ResourceID:   groupID,
		Action:       action,
		Details:      models.AuditDetails{"client_id": clientID},
		Success:      true,
	})
	return nil
}
