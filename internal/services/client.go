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
	ErrClientNameRequired = errors.New("client name is required")
	ErrRedirectRequired   = errors.New("at least one redirect URI is required")
)

// ClientService manages relying party registrations
type ClientService struct {
	store        *store.Store
	auditService *AuditService
}

func NewClientService(s *store.Store, auditService *AuditService) *ClientService {
	return &ClientService{store: s, auditService: auditService}
}

// CreateClientRequest carries the registration fields of a new client
type CreateClientRequest struct {
	Name                    string
	Description             string
	SiteID                  string
	RedirectURIs            []string
	PostLogoutURIs          []string
	Scopes                  []string
	TokenEndpointAuthMethod string
	IsFirstParty            bool
	RequireAccessGrant      bool
}

// ClientResponse wraps a client together with the plaintext secret,
// populated only at creation and regeneration. The secret is never
// recoverable afterwards.
type ClientResponse struct {
	*models.Client
	ClientSecretPlain string
}

// CreateClient registers a relying party. Confidential clients get a
// generated secret returned exactly once.
func (s *ClientService) CreateClient(
	ctx context.Context,
	req CreateClientRequest,
	actorID string,
) (*ClientResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrClientNameRequired
	}
	if len(req.RedirectURIs) == 0 {
		return nil, ErrRedirectRequired
	}

	authMethod := req.TokenEndpointAuthMethod
	if authMethod == "" {
		authMethod = models.AuthMethodSecretBasic
	}

	scopes := req.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "profile", "email"}
	}

	client := &models.Client{
		ClientID:                uuid.New().String(),
		Name:                    strings.TrimSpace(req.Name),
		Description:             strings.TrimSpace(req.Description),
		SiteID:                  req.SiteID,
		RedirectURIs:            req.RedirectURIs,
		PostLogoutURIs:          req.PostLogoutURIs,
		GrantTypes:              []string{"authorization_code", "refresh_token"},
		ResponseTypes:           []string{"code"},
		Scopes:                  scopes,
		TokenEndpointAuthMethod: authMethod,
		IsFirstParty:            req.IsFirstParty,
		RequireAccessGrant:      req.RequireAccessGrant,
		IsActive:                true,
	}

	var secretPlain string
	if !client.IsPublic() {
		secret, err := client.GenerateClientSecret(ctx)
		if err != nil {
			return nil, err
		}
		secretPlain = secret
	}

	if err := s.store.CreateClient(ctx, client); err != nil {
		return nil, err
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventClientCreated,
		Severity:     models.SeverityInfo,
		ActorUserID:  actorID,
		ResourceType: models.ResourceClient,
		ResourceID:   client.ClientID,
		ResourceName: client.Name,
		Action:       "Client registered",
		Details: models.AuditDetails{
			"auth_method":          client.TokenEndpointAuthMethod,
			"first_party":          client.IsFirstParty,
			"require_access_grant": client.RequireAccessGrant,
		},
		Success: true,
	})

	return &ClientResponse{Client: client, ClientSecretPlain: secretPlain}, nil
}

// UpdateClientRequest carries the mutable registration fields
type UpdateClientRequest struct {
	Name               string
	Description        string
	RedirectURIs       []string
	PostLogoutURIs     []string
	Scopes             []string
	IsFirstParty       bool
	RequireAccessGrant bool
	IsActive           bool
}

// UpdateClient updates a relying party registration
func (s *ClientService) UpdateClient(
	ctx context.Context,
	clientID string,
	req UpdateClientRequest,
	actorID string,
) (*models.Client, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrClientNameRequired
	}
	if len(req.RedirectURIs) == 0 {
		return nil, ErrRedirectRequired
	}

	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, ErrClientNotFound
	}

	client.Name = strings.TrimSpace(req.Name)
	client.Description = strings.TrimSpace(req.Description)
	client.RedirectURIs = req.RedirectURIs
	client.PostLogoutURIs = req.PostLogoutURIs
	client.Scopes = req.Scopes
	client.IsFirstParty = req.IsFirstParty
	client.RequireAccessGrant = req.RequireAccessGrant
	client.IsActive = req.IsActive

	if err := s.store.UpdateClient(ctx, client); err != nil {
		return nil, err
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventClientUpdated,
		Severity:     models.SeverityInfo,
		ActorUserID:  actorID,
		ResourceType: models.ResourceClient,
		ResourceID:   client.ClientID,
		ResourceName: client.Name,
		Action:       "Client updated",
		Details:      models.AuditDetails{"is_active": client.IsActive},
		Success:      true,
	})

	return client, nil
}

// DeleteClient removes a relying party registration
func (s *ClientService) DeleteClient(ctx context.Context, clientID, actorID string) error {
	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return ErrClientNotFound
	}

	if err := s.store.DeleteClient(ctx, clientID); err != nil {
		return err
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventClientDeleted,
		Severity:     models.SeverityWarning,
		ActorUserID:  actorID,
		ResourceType: models.ResourceClient,
		ResourceID:   clientID,
		ResourceName: client.Name,
		Action:       "Client deleted",
		Success:      true,
	})

	return nil
}

// GetClient fetches a client by its public identifier
func (s *ClientService) GetClient(ctx context.Context, clientID string) (*models.Client, error) {
	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, ErrClientNotFound
	}
	return client, nil
}

// ListClients returns a paginated client listing
func (s *ClientService) ListClients(
	ctx context.Context,
	params store.PaginationParams,
) ([]models.Client, store.PaginationResult, error) {
	return s.store.ListClientsPaginated(ctx, params)
}

// RegenerateSecret replaces the client secret and returns the new
// plaintext once. Existing deployments must be reconfigured.
func (s *ClientService) RegenerateSecret(
	ctx context.Context,
	clientID, actorID string,
) (string, error) {
	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return "", ErrClientNotFound
	}

	secret, err := client.GenerateClientSecret(ctx)
	if err != nil {
		return "", err
	}
	if err := s.store.UpdateClient(ctx, client); err != nil {
		return "", err
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventClientSecretRegenerated,
		Severity:     models.SeverityWarning,
		ActorUserID:  actorID,
		ResourceType: models.ResourceClient,
		ResourceID:   client.ClientID,
		ResourceName: client.Name,
		Action:       "Client secret regenerated",
		Success:      true,
	})

	return secret, nil
}
