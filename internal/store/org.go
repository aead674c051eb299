package store

import (
	"context"
	"errors"

	"github.com/mitradev/ssogate/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organizational tree operations (sites, divisions, units, roles).
// Plain persistence wrappers used by the admin API.

func (s *Store) CreateSite(ctx context.Context, site *models.Site) error {
	if site.ID == "" {
		site.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Create(site).Error
}

func (s *Store) GetSite(ctx context.Context, id string) (*models.Site, error) {
	var site models.Site
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &site, nil
}

func (s *Store) ListSites(ctx context.Context) ([]models.Site, error) {
	var sites []models.Site
	err := s.db.WithContext(ctx).Order("code").Find(&sites).Error
	return sites, err
}

func (s *Store) UpdateSite(ctx context.Context, site *models.Site) error {
	return s.db.WithContext(ctx).Save(site).Error
}

func (s *Store) DeleteSite(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Site{}).Error
}

func (s *Store) CreateDivision(ctx context.Context, division *models.Division) error {
	if division.ID == "" {
		division.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Create(division).Error
}

func (s *Store) ListDivisionsBySite(ctx context.Context, siteID string) ([]models.Division, error) {
	var divisions []models.Division
	err := s.db.WithContext(ctx).Where("site_id = ?", siteID).Order("code").Find(&divisions).Error
	return divisions, err
}

func (s *Store) UpdateDivision(ctx context.Context, division *models.Division) error {
	return s.db.WithContext(ctx).Save(division).Error
}

func (s *Store) DeleteDivision(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Division{}).Error
}

func (s *Store) CreateUnit(ctx context.Context, unit *models.Unit) error {
	if unit.ID == "" {
		unit.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Create(unit).Error
}

func (s *Store) ListUnitsByDivision(ctx context.Context, divisionID string) ([]models.Unit, error) {
	var units []models.Unit
	err := s.db.WithContext(ctx).
		Where("division_id = ?", divisionID).
		Order("code").
		Find(&units).Error
	return units, err
}

func (s *Store) UpdateUnit(ctx context.Context, unit *models.Unit) error {
	return s.db.WithContext(ctx).Save(unit).Error
}

func (s *Store) DeleteUnit(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Unit{}).Error
}

func (s *Store) CreateRole(ctx context.Context, role *models.Role) error {
	if role.ID == "" {
		role.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Create(role).Error
}

func (s *Store) GetRole(ctx context.Context, id string) (*models.Role, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (s *Store) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := s.db.WithContext(ctx).Order("name").Find(&roles).Error
	return roles, err
}

func (s *Store) UpdateRole(ctx context.Context, role *models.Role) error {
	return s.db.WithContext(ctx).Save(role).Error
}

// DeleteRole refuses to remove system roles
func (s *Store) DeleteRole(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND is_system = ?", id, false).
		Delete(&models.Role{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
