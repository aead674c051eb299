package services

import (
	"context"
	"errors"
	"strings"

	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/store"

	"github.com/google/uuid"
)

var (
	ErrOrgNameRequired = errors.New("name is required")
	ErrOrgCodeRequired = errors.New("code is required")
	ErrSystemRole      = errors.New("system roles cannot be deleted")
)

// OrgService manages the organizational tree (sites, divisions, units)
// and roles referenced by the user directory.
type OrgService struct {
	store        *store.Store
	auditService *AuditService
}

func NewOrgService(s *store.Store, auditService *AuditService) *OrgService {
	return &OrgService{store: s, auditService: auditService}
}

// CreateSite registers a new site
func (s *OrgService) CreateSite(
	ctx context.Context,
	site *models.Site,
	actorID string,
) (*models.Site, error) {
	if strings.TrimSpace(site.Name) == "" {
		return nil, ErrOrgNameRequired
	}
	if strings.TrimSpace(site.Code) == "" {
		return nil, ErrOrgCodeRequired
	}

	site.ID = uuid.New().String()
	site.IsActive = true
	if err := s.store.CreateSite(ctx, site); err != nil {
		return nil, err
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventOrgChanged,
		Severity:     models.SeverityInfo,
		ActorUserID:  actorID,
		ResourceType: models.ResourceSite,
		ResourceID:   site.ID,
		ResourceName: site.Name,
		Action:       "site created",
		Success:      true,
	})
	return site, nil
}

// ListSites returns every site
func (s *OrgService) ListSites(ctx context.Context) ([]models.Site, error) {
	return s.store.ListSites(ctx)
}

// UpdateSite saves site changes
func (s *OrgService) UpdateSite(ctx context.Context, site *models.Site) error {
	return s.store.UpdateSite(ctx, site)
}

// DeleteSite removes a site
func (s *OrgService) DeleteSite(ctx context.Context, id string) error {
	return s.store.DeleteSite(ctx, id)
}

// CreateDivision registers a division under a site
func (s *OrgService) CreateDivision(
	ctx context.Context,
	division *models.Division,
) (*models.Division, error) {
	if strings.TrimSpace(division.Name) == "" {
		return nil, ErrOrgNameRequired
	}
	if strings.TrimSpace(division.Code) == "" {
		return nil, ErrOrgCodeRequired
	}

	division.ID = uuid.New().String()
	division.IsActive = true
	if err := s.store.CreateDivision(ctx, division); err != nil {
		return nil, err
	}
	return division, nil
}

// ListDivisions returns the divisions of a site
func (s *OrgService) ListDivisions(ctx context.Context, siteID string) ([]models.Division, error) {
	return s.store.ListDivisionsBySite(ctx, siteID)
}

// DeleteDivision removes a division
func (s *OrgService) DeleteDivision(ctx context.Context, id string) error {
	return s.store.DeleteDivision(ctx, id)
}

// CreateUnit registers a unit under a division
func (s *OrgService) CreateUnit(ctx context.Context, unit *models.Unit) (*models.Unit, error) {
	if strings.TrimSpace(unit.Name) == "" {
		return nil, ErrOrgNameRequired
	}
	if strings.TrimSpace(unit.Code) == "" {
		return nil, ErrOrgCodeRequired
	}

	unit.ID = uuid.New().String()
	unit.IsActive = true
	if err := s.store.CreateUnit(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// ListUnits returns the units of a division
func (s *OrgService) ListUnits(ctx context.Context, divisionID string) ([]models.Unit, error) {
	return s.store.ListUnitsByDivision(ctx, divisionID)
}

// DeleteUnit removes a unit
func (s *OrgService) DeleteUnit(ctx context.Context, id string) error {
	return s.store.DeleteUnit(ctx, id)
}

// CreateRole registers a role
func (s *OrgService) CreateRole(
	ctx context.Context,
	role *models.Role,
	actorID string,
) (*models.Role, error) {
	if strings.TrimSpace(role.Name) == "" {
		return nil, ErrOrgNameRequired
	}

	role.ID = uuid.New().String()
	if err := s.store.CreateRole(ctx, role); err != nil {
		return nil, err
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventRoleChanged,
		Severity:     models.SeverityInfo,
		ActorUserID:  actorID,
		ResourceType: models.ResourceRole,
		ResourceID:   role.ID,
		ResourceName: role.Name,
		Action:       "role created",
		Success:      true,
	})
	return role, nil
}

// ListRoles returns every role
func (s *OrgService) ListRoles(ctx context.Context) ([]models.Role, error) {
	return s.store.ListRoles(ctx)
}

// DeleteRole removes a non-system role
func (s *OrgService) DeleteRole(ctx context.Context, id string) error {
	role, err := s.store.GetRole(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return ErrSystemRole
	}
	return s.store.DeleteRole(ctx, id)
}
