package store

import (
	"context"
	"errors"
	"strings"

	"github.com/mitradev/ssogate/internal/models"

	"gorm.io/gorm"
)

// Client operations

func (s *Store) GetClient(ctx context.Context, clientID string) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).Where("client_id = ?", clientID).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &client, nil
}

// GetActiveClient returns the client only when it exists and is active
func (s *Store) GetActiveClient(ctx context.Context, clientID string) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND is_active = ?", clientID, true).
		First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (s *Store) ListClientsPaginated(
	ctx context.Context,
	params PaginationParams,
) ([]models.Client, PaginationResult, error) {
	query := s.db.WithContext(ctx).Model(&models.Client{})
	if params.Search != "" {
		like := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR client_id LIKE ?", like, "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	var clients []models.Client
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&clients).Error
	if err != nil {
		return nil, PaginationResult{}, err
	}

	return clients, CalculatePagination(total, params.Page, params.PageSize), nil
}

func (s *Store) CreateClient(ctx context.Context, client *models.Client) error {
	return s.db.WithContext(ctx).Create(client).Error
}

func (s *Store) UpdateClient(ctx context.Context, client *models.Client) error {
	return s.db.WithContext(ctx).Save(client).Error
}

func (s *Store) DeleteClient(ctx context.Context, clientID string) error {
	return s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Delete(&models.Client{}).Error
}
