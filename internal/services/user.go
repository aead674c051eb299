package services

import (
	"context"
	"errors"
	"log"

	"github.com/mitradev/ssogate/internal/auth"
	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user account is disabled")
)

// UserService handles sign-in and user administration. Password sign-in
// goes through the local provider; the optional upstream OAuth provider
// only maps an already-provisioned user by verified email.
type UserService struct {
	store         *store.Store
	localProvider *auth.LocalAuthProvider
	oauthProvider *auth.OAuthProvider
	auditService  *AuditService
}

func NewUserService(
	s *store.Store,
	localProvider *auth.LocalAuthProvider,
	oauthProvider *auth.OAuthProvider,
	auditService *AuditService,
) *UserService {
	return &UserService{
		store:         s,
		localProvider: localProvider,
		oauthProvider: oauthProvider,
		auditService:  auditService,
	}
}

// Authenticate verifies an email/password pair and returns the user
func (s *UserService) Authenticate(
	ctx context.Context,
	email, password string,
) (*models.User, error) {
	result, err := s.localProvider.Authenticate(ctx, email, password)
	if err != nil {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventAuthenticationFailure,
			Severity:     models.SeverityWarning,
			ResourceType: models.ResourceUser,
			Action:       "Password sign-in failed",
			Details:      models.AuditDetails{"email": email},
			Success:      false,
			ErrorMessage: err.Error(),
		})
		if errors.Is(err, auth.ErrUserDisabled) {
			return nil, ErrUserDisabled
		}
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByID(ctx, result.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventAuthenticationSuccess,
		Severity:     models.SeverityInfo,
		ActorUserID:  user.ID,
		ActorName:    user.Name,
		ResourceType: models.ResourceUser,
		ResourceID:   user.ID,
		Action:       "Password sign-in",
		Success:      true,
	})

	return user, nil
}

// OAuthProvider exposes the configured upstream provider, nil when
// upstream sign-in is disabled.
func (s *UserService) OAuthProvider() *auth.OAuthProvider {
	return s.oauthProvider
}

// AuthenticateUpstream maps an upstream identity to a local user by
// email. Unknown or disabled users are rejected; upstream sign-in never
// provisions accounts.
func (s *UserService) AuthenticateUpstream(
	ctx context.Context,
	info *auth.OAuthUserInfo,
) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, info.Email)
	if err != nil {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventAuthenticationFailure,
			Severity:     models.SeverityWarning,
			ResourceType: models.ResourceUser,
			Action:       "Upstream sign-in rejected: no matching user",
			Details: models.AuditDetails{
				"email":    info.Email,
				"provider": "github",
			},
			Success: false,
		})
		return nil, auth.ErrOAuthUnlinked
	}
	if !user.IsActive() {
		return nil, ErrUserDisabled
	}

	// Opportunistic profile refresh from the upstream avatar
	if info.AvatarURL != "" && user.AvatarURL != info.AvatarURL {
		user.AvatarURL = info.AvatarURL
		if err := s.store.UpdateUser(ctx, user); err != nil {
			log.Printf("[Auth] Avatar refresh failed for user=%s: %v", user.ID, err)
		}
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventOAuthAuthentication,
		Severity:     models.SeverityInfo,
		ActorUserID:  user.ID,
		ActorName:    user.Name,
		ResourceType: models.ResourceUser,
		ResourceID:   user.ID,
		Action:       "Upstream sign-in",
		Details:      models.AuditDetails{"provider": "github"},
		Success:      true,
	})

	return user, nil
}

// GetUserByID fetches a user by id
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// CreateUserRequest carries the fields of an admin-created user
type CreateUserRequest struct {
	EmployeeID string
	Email      string
	Name       string
	Password   string
	UnitID     string
	Department string
	Position   string
	RoleID     string
	RoleName   string
}

// CreateUser provisions a user from the admin API
func (s *UserService) CreateUser(
	ctx context.Context,
	req CreateUserRequest,
	actorID string,
) (*models.User, error) {
	user := &models.User{
		ID:         uuid.New().String(),
		EmployeeID: req.EmployeeID,
		Email:      req.Email,
		Name:       req.Name,
		Status:     models.UserStatusActive,
		UnitID:     req.UnitID,
		Department: req.Department,
		Position:   req.Position,
		RoleID:     req.RoleID,
		RoleName:   req.RoleName,
	}

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventUserCreated,
		Severity:     models.SeverityInfo,
		ActorUserID:  actorID,
		ResourceType: models.ResourceUser,
		ResourceID:   user.ID,
		ResourceName: user.Email,
		Action:       "User created",
		Success:      true,
	})

	return user, nil
}

// SetUserStatus activates or disables a user. The caller is expected to
// cascade-revoke refresh tokens when disabling.
func (s *UserService) SetUserStatus(
	ctx context.Context,
	userID, status, actorID string,
) error {
	if err := s.store.SetUserStatus(ctx, userID, status); err != nil {
		return err
	}

	eventType := models.EventUserUpdated
	severity := models.SeverityInfo
	if status == models.UserStatusDisabled {
		eventType = models.EventUserDisabled
		severity = models.SeverityWarning
	}
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    eventType,
		Severity:     severity,
		ActorUserID:  actorID,
		ResourceType: models.ResourceUser,
		ResourceID:   userID,
		Action:       "User status changed",
		Details:      models.AuditDetails{"status": status},
		Success:      true,
	})

	return nil
}

// ListUsers returns a paginated, searchable user listing
func (s *UserService) ListUsers(
	ctx context.Context,
	params store.PaginationParams,
) ([]models.User, store.PaginationResult, error) {
	return s.store.ListUsersPaginated(ctx, params)
}
