package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mitradev/ssogate/internal/middleware"
	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/services"
	"github.com/mitradev/ssogate/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler serves the JSON management API under /api/admin
type AdminHandler struct {
	userService   *services.UserService
	clientService *services.ClientService
	accessService *services.AccessService
	tokenService  *services.TokenService
	orgService    *services.OrgService
	auditService  *services.AuditService
	statsService  *services.StatsService
	hrisService   *services.HRISService
}

func NewAdminHandler(
	us *services.UserService,
	cs *services.ClientService,
	acs *services.AccessService,
	ts *services.TokenService,
	os *services.OrgService,
	aus *services.AuditService,
	ss *services.StatsService,
	hs *services.HRISService,
) *AdminHandler {
	return &AdminHandler{
		userService:   us,
		clientService: cs,
		accessService: acs,
		tokenService:  ts,
		orgService:    os,
		auditService:  aus,
		statsService:  ss,
		hrisService:   hs,
	}
}

func actorID(c *gin.Context) string {
	if user := middleware.GetUser(c); user != nil {
		return user.ID
	}
	return ""
}

func paginationFromQuery(c *gin.Context) store.PaginationParams {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	return store.NewPaginationParams(page, pageSize, c.Query("search"))
}

func writeList(c *gin.Context, items any, result store.PaginationResult) {
	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"pagination": result,
	})
}

func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

// ---- Users ----

// ListUsers godoc
//
//	@Summary	List users
//	@Tags		Admin
//	@Produce	json
//	@Param		page		query		int		false	"Page number"
//	@Param		page_size	query		int		false	"Page size (max 100)"
//	@Param		search		query		string	false	"Matches name, email, employee id"
//	@Success	200			{object}	object{items=[]models.User,pagination=store.PaginationResult}
//	@Router		/api/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, result, err := h.userService.ListUsers(c.Request.Context(), paginationFromQuery(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	writeList(c, users, result)
}

type createUserPayload struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Email      string `json:"email"       binding:"required,email"`
	Name       string `json:"name"        binding:"required"`
	Password   string `json:"password"`
	UnitID     string `json:"unit_id"`
	Department string `json:"department"`
	Position   string `json:"position"`
	RoleID     string `json:"role_id"`
	RoleName   string `json:"role_name"`
}

// CreateUser godoc
//
//	@Summary	Create user
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		user	body		createUserPayload	true	"User fields"
//	@Success	201		{object}	models.User
//	@Failure	400		{object}	object{error=string}
//	@Router		/api/admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var payload createUserPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	user, err := h.userService.CreateUser(c, services.CreateUserRequest{
		EmployeeID: payload.EmployeeID,
		Email:      payload.Email,
		Name:       payload.Name,
		Password:   payload.Password,
		UnitID:     payload.UnitID,
		Department: payload.Department,
		Position:   payload.Position,
		RoleID:     payload.RoleID,
		RoleName:   payload.RoleName,
	}, actorID(c))
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

type userStatusPayload struct {
	Status string `json:"status" binding:"required,oneof=active disabled"`
}

// SetUserStatus godoc
//
//	@Summary	Activate or disable a user
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"User ID"
//	@Param		status	body		userStatusPayload	true	"New status"
//	@Success	204		{string}	string				"No content"
//	@Router		/api/admin/users/{id}/status [put]
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	var payload userStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	if err := h.userService.SetUserStatus(c, c.Param("id"), payload.Status, actorID(c)); err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RevokeUserTokens godoc
//
//	@Summary	Revoke every refresh token of a user
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	object{revoked=int}
//	@Router		/api/admin/users/{id}/revoke-tokens [post]
func (h *AdminHandler) RevokeUserTokens(c *gin.Context) {
	revoked, err := h.tokenService.RevokeUserTokens(c, c.Param("id"), actorID(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revoked": revoked})
}

// ---- Clients ----

// ListClients godoc
//
//	@Summary	List relying parties
//	@Tags		Admin
//	@Produce	json
//	@Success	200	{object}	object{items=[]models.Client,pagination=store.PaginationResult}
//	@Router		/api/admin/clients [get]
func (h *AdminHandler) ListClients(c *gin.Context) {
	clients, result, err := h.clientService.ListClients(c.Request.Context(), paginationFromQuery(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	writeList(c, clients, result)
}

type clientPayload struct {
	Name                    string   `json:"name" binding:"required"`
	Description             string   `json:"description"`
	SiteID                  string   `json:"site_id"`
	RedirectURIs            []string `json:"redirect_uris" binding:"required,min=1"`
	PostLogoutURIs          []string `json:"post_logout_uris"`
	Scopes                  []string `json:"scopes"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
	IsFirstParty            bool     `json:"is_first_party"`
	RequireAccessGrant      bool     `json:"require_access_grant"`
	IsActive                bool     `json:"is_active"`
}

// CreateClient godoc
//
//	@Summary	Register a relying party
//	@Description	The client_secret in the response is shown exactly once and cannot be recovered.
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		client	body		clientPayload	true	"Client registration"
//	@Success	201		{object}	object{client=models.Client,client_secret=string}
//	@Router		/api/admin/clients [post]
func (h *AdminHandler) CreateClient(c *gin.Context) {
	var payload clientPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	resp, err := h.clientService.CreateClient(c, services.CreateClientRequest{
		Name:                    payload.Name,
		Description:             payload.Description,
		SiteID:                  payload.SiteID,
		RedirectURIs:            payload.RedirectURIs,
		PostLogoutURIs:          payload.PostLogoutURIs,
		Scopes:                  payload.Scopes,
		TokenEndpointAuthMethod: payload.TokenEndpointAuthMethod,
		IsFirstParty:            payload.IsFirstParty,
		RequireAccessGrant:      payload.RequireAccessGrant,
	}, actorID(c))
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"client":        resp.Client,
		"client_secret": resp.ClientSecretPlain,
	})
}

// GetClient godoc
//
//	@Summary	Get one relying party
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path		string	true	"Client ID"
//	@Success	200	{object}	models.Client
//	@Failure	404	{object}	object{error=string}
//	@Router		/api/admin/clients/{id} [get]
func (h *AdminHandler) GetClient(c *gin.Context) {
	client, err := h.clientService.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateClient godoc
//
//	@Summary	Update a relying party
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Client ID"
//	@Param		client	body		clientPayload	true	"Updated fields"
//	@Success	200		{object}	models.Client
//	@Router		/api/admin/clients/{id} [put]
func (h *AdminHandler) UpdateClient(c *gin.Context) {
	var payload clientPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	client, err := h.clientService.UpdateClient(c, c.Param("id"), services.UpdateClientRequest{
		Name:               payload.Name,
		Description:        payload.Description,
		RedirectURIs:       payload.RedirectURIs,
		PostLogoutURIs:     payload.PostLogoutURIs,
		Scopes:             payload.Scopes,
		IsFirstParty:       payload.IsFirstParty,
		RequireAccessGrant: payload.RequireAccessGrant,
		IsActive:           payload.IsActive,
	}, actorID(c))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrClientNotFound) {
			status = http.StatusNotFound
		}
		writeError(c, status, err)
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient godoc
//
//	@Summary	Delete a relying party
//	@Tags		Admin
//	@Param		id	path		string	true	"Client ID"
//	@Success	204	{string}	string	"No content"
//	@Router		/api/admin/clients/{id} [delete]
func (h *AdminHandler) DeleteClient(c *gin.Context) {
	if err := h.clientService.DeleteClient(c, c.Param("id"), actorID(c)); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrClientNotFound) {
			status = http.StatusNotFound
		}
		writeError(c, status, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegenerateClientSecret godoc
//
//	@Summary	Regenerate a client secret
//	@Description	The new secret is shown exactly once. The previous secret stops working immediately.
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path		string	true	"Client ID"
//	@Success	200	{object}	object{client_secret=string}
//	@Router		/api/admin/clients/{id}/secret [post]
func (h *AdminHandler) RegenerateClientSecret(c *gin.Context) {
	secret, err := h.clientService.RegenerateSecret(c, c.Param("id"), actorID(c))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrClientNotFound) {
			status = http.StatusNotFound
		}
		writeError(c, status, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client_secret": secret})
}

// ---- Access grants and groups ----

type grantPayload struct {
	UserID    string     `json:"user_id"   binding:"required"`
	ClientID  string     `json:"client_id" binding:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
	Notes     string     `json:"notes"`
}

// GrantAccess godoc
//
//	@Summary	Grant a user access to a client
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		grant	body		grantPayload	true	"Grant"
//	@Success	201		{object}	models.AccessGrant
//	@Router		/api/admin/grants [post]
func (h *AdminHandler) GrantAccess(c *gin.Context) {
	var payload grantPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	grant := &models.AccessGrant{
		ID:        uuid.New().String(),
		UserID:    payload.UserID,
		ClientID:  payload.ClientID,
		GrantedBy: actorID(c),
		GrantedAt: time.Now(),
		ExpiresAt: payload.ExpiresAt,
		IsActive:  true,
		Notes:     payload.Notes,
	}
	if err := h.accessService.GrantAccess(c, grant); err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusCreated, grant)
}

// RevokeAccess godoc
//
//	@Summary	Revoke a user's access to a client
//	@Tags		Admin
//	@Accept		json
//	@Param		grant	body		object{user_id=string,client_id=string}	true	"Pair to revoke"
//	@Success	204		{string}	string										"No content"
//	@Router		/api/admin/grants [delete]
func (h *AdminHandler) RevokeAccess(c *gin.Context) {
	var payload struct {
		UserID   string `json:"user_id"   binding:"required"`
		ClientID string `json:"client_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	if err := h.accessService.RevokeAccess(c, payload.UserID, payload.ClientID, actorID(c)); err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUserGrants godoc
//
//	@Summary	List the explicit grants of a user
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{array}		models.AccessGrant
//	@Router		/api/admin/users/{id}/grants [get]
func (h *AdminHandler) ListUserGrants(c *gin.Context) {
	grants, err := h.accessService.ListUserGrants(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, grants)
}

// ListGroups godoc
//
//	@Summary	List access groups
//	@Tags		Admin
//	@Produce	json
//	@Success	200	{array}	models.AccessGroup
//	@Router		/api/admin/groups [get]
func (h *AdminHandler) ListGroups(c *gin.Context) {
	groups, err := h.accessService.ListGroups(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// CreateGroup godoc
//
//	@Summary	Create an access group
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		group	body		object{name=string,description=string}	true	"Group"
//	@Success	201		{object}	models.AccessGroup
//	@Router		/api/admin/groups [post]
func (h *AdminHandler) CreateGroup(c *gin.Context) {
	var payload struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	group := &models.AccessGroup{
		ID:          uuid.New().String(),
		Name:        payload.Name,
		Description: payload.Description,
	}
	if err := h.accessService.CreateGroup(c, group, actorID(c)); err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

// DeleteGroup godoc
//
//	@Summary	Delete an access group
//	@Tags		Admin
//	@Param		id	path		string	true	"Group ID"
//	@Success	204	{string}	string	"No content"
//	@Router		/api/admin/groups/{id} [delete]
func (h *AdminHandler) DeleteGroup(c *gin.Context) {
	if err := h.accessService.DeleteGroup(c, c.Param("id"), actorID(c)); err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetGroupMember adds or removes a user from a group depending on the method
func (h *AdminHandler) SetGroupMember(c *gin.Context) {
	member := c.Request.Method != http.MethodDelete
	err := h.accessService.SetGroupMembership(
		c, c.Param("id"), c.Param("userID"), actorID(c), member,
	)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetGroupClient adds or removes a client from a group depending on the method
func (h *AdminHandler) SetGroupClient(c *gin.Context) {
	member := c.Request.Method != http.MethodDelete
	err := h.accessService.SetGroupClient(
		c, c.Param("id"), c.Param("clientID"), actorID(c), member,
	)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- Grant family revocation ----

// RevokeGrantFamily godoc
//
//	@Summary	Revoke a token grant family
//	@Description	Deletes every live artifact sharing the grant id. Outstanding access tokens keep working until expiry.
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		grant	body		object{grant_id=string}	true	"Grant family"
//	@Success	200		{object}	object{revoked=int}
//	@Router		/api/admin/tokens/revoke-grant [post]
func (h *AdminHandler) RevokeGrantFamily(c *gin.Context) {
	var payload struct {
		GrantID string `json:"grant_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	revoked, err := h.tokenService.RevokeGrant(c, payload.GrantID, actorID(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revoked": revoked})
}

// ---- Organization ----

// ListSites godoc
//
//	@Summary	List sites
//	@Tags		Admin
//	@Produce	json
//	@Success	200	{array}	models.Site
//	@Router		/api/admin/sites [get]
func (h *AdminHandler) ListSites(c *gin.Context) {
	sites, err := h.orgService.ListSites(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, sites)
}

// CreateSite godoc
//
//	@Summary	Create a site
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		site	body		models.Site	true	"Site"
//	@Success	201		{object}	models.Site
//	@Router		/api/admin/sites [post]
func (h *AdminHandler) CreateSite(c *gin.Context) {
	var site models.Site
	if err := c.ShouldBindJSON(&site); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	created, err := h.orgService.CreateSite(c, &site, actorID(c))
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteSite removes a site
func (h *AdminHandler) DeleteSite(c *gin.Context) {
	if err := h.orgService.DeleteSite(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListDivisions returns the divisions of a site
func (h *AdminHandler) ListDivisions(c *gin.Context) {
	divisions, err := h.orgService.ListDivisions(c.Request.Context(), c.Query("site_id"))
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, divisions)
}

// CreateDivision creates a division
func (h *AdminHandler) CreateDivision(c *gin.Context) {
	var division models.Division
	if err := c.ShouldBindJSON(&division); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	created, err := h.orgService.CreateDivision(c.Request.Context(), &division)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListUnits returns the units of a division
func (h *AdminHandler) ListUnits(c *gin.Context) {
	units, err := h.orgService.ListUnits(c.Request.Context(), c.Query("division_id"))
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

// CreateUnit creates a unit
func (h *AdminHandler) CreateUnit(c *gin.Context) {
	var unit models.Unit
	if err := c.ShouldBindJSON(&unit); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	created, err := h.orgService.CreateUnit(c.Request.Context(), &unit)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListRoles returns every role
func (h *AdminHandler) ListRoles(c *gin.Context) {
	roles, err := h.orgService.ListRoles(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

// CreateRole creates a role
func (h *AdminHandler) CreateRole(c *gin.Context) {
	var role models.Role
	if err := c.ShouldBindJSON(&role); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	created, err := h.orgService.CreateRole(c, &role, actorID(c))
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteRole deletes a non-system role
func (h *AdminHandler) DeleteRole(c *gin.Context) {
	if err := h.orgService.DeleteRole(c.Request.Context(), c.Param("id")); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrSystemRole) {
			status = http.StatusBadRequest
		}
		writeError(c, status, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- Audit logs ----

// ListAuditLogs godoc
//
//	@Summary	Query the audit trail
//	@Tags		Admin
//	@Produce	json
//	@Param		event_type	query		string	false	"Filter by event type"
//	@Param		actor		query		string	false	"Filter by actor user id"
//	@Param		resource	query		string	false	"Filter by resource id"
//	@Param		severity	query		string	false	"Filter by severity"
//	@Param		search		query		string	false	"Matches action, resource name, actor name"
//	@Success	200			{object}	object{items=[]models.AuditLog,pagination=store.PaginationResult}
//	@Router		/api/admin/audit-logs [get]
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	filters := store.AuditLogFilters{
		EventType:    models.EventType(c.Query("event_type")),
		ActorUserID:  c.Query("actor"),
		ResourceType: models.ResourceType(c.Query("resource_type")),
		ResourceID:   c.Query("resource"),
		Severity:     models.EventSeverity(c.Query("severity")),
		Search:       c.Query("search"),
	}

	logs, result, err := h.auditService.GetAuditLogs(
		c.Request.Context(), filters, paginationFromQuery(c),
	)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	writeList(c, logs, result)
}

// ---- Stats and HRIS ----

// DashboardStats godoc
//
//	@Summary	Dashboard counters
//	@Tags		Admin
//	@Produce	json
//	@Success	200	{object}	store.DashboardStats
//	@Router		/api/admin/stats [get]
func (h *AdminHandler) DashboardStats(c *gin.Context) {
	stats, err := h.statsService.GetDashboardStats(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// TriggerHRISSync godoc
//
//	@Summary	Run an HRIS roster sync now
//	@Tags		Admin
//	@Produce	json
//	@Success	200	{object}	services.HRISSyncResult
//	@Failure	502	{object}	object{error=string}
//	@Router		/api/admin/hris/sync [post]
func (h *AdminHandler) TriggerHRISSync(c *gin.Context) {
	if h.hrisService == nil {
		writeError(c, http.StatusNotFound, errors.New("HRIS sync is not configured"))
		return
	}

	result, err := h.hrisService.Sync(c)
	if err != nil {
		writeError(c, http.StatusBadGateway, err)
		return
	}

	h.statsService.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, result)
}
