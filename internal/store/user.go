package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitradev/ssogate/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User operations

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail finds a user by email address (case-insensitive;
// emails are stored lowercase).
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByEmployeeID(ctx context.Context, employeeID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a new user, enforcing lowercase unique email
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", user.Email).First(&existing).Error
	if err == nil {
		return ErrEmailConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Create(user).Error
}

// UpdateUser updates an existing user
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	return s.db.WithContext(ctx).Save(user).Error
}

// SetUserStatus flips a user's status without touching other fields
func (s *Store) SetUserStatus(ctx context.Context, userID, status string) error {
	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("status", status).Error
}

// ListUsersPaginated returns users matching an optional search keyword
func (s *Store) ListUsersPaginated(
	ctx context.Context,
	params PaginationParams,
) ([]models.User, PaginationResult, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if params.Search != "" {
		like := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(name) LIKE ? OR employee_id LIKE ?",
			like, like, "%"+params.Search+"%",
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	var users []models.User
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&users).Error
	if err != nil {
		return nil, PaginationResult{}, err
	}

	return users, CalculatePagination(total, params.Page, params.PageSize), nil
}

// UpsertEmployee creates or updates a user keyed by employee id. Used by
// the HRIS sync; never touches the password hash of an existing user.
func (s *Store) UpsertEmployee(ctx context.Context, incoming *models.User) (*models.User, error) {
	incoming.Email = strings.ToLower(incoming.Email)

	var user models.User
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", incoming.EmployeeID).
		First(&user).Error

	if err == nil {
		user.Email = incoming.Email
		user.Name = incoming.Name
		user.Department = incoming.Department
		user.Position = incoming.Position
		user.UnitID = incoming.UnitID
		user.AvatarURL = incoming.AvatarURL
		user.Status = incoming.Status
		if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to update employee: %w", err)
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to query employee: %w", err)
	}

	// New employee: email must still be unique
	var conflicting models.User
	err = s.db.WithContext(ctx).Where("email = ?", incoming.Email).First(&conflicting).Error
	if err == nil {
		return nil, ErrEmailConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if incoming.ID == "" {
		incoming.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(incoming).Error; err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	return incoming, nil
}

// DisableEmployeesNotSeenSince disables HRIS-managed users whose records
// were not refreshed by the latest sync run.
func (s *Store) DisableEmployeesNotSeenSince(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("employee_id <> '' AND status = ? AND updated_at < ?", models.UserStatusActive, cutoff).
		Update("status", models.UserStatusDisabled)
	return res.RowsAffected, res.Error
}
