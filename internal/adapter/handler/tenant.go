package handler

import (
	"log/slog"
	"net/http"

	"authgate/internal/domain"
	"authgate/internal/usecase"
	"authgate/middleware"

	"github.com/labstack/echo/v4"
)

// ConfigReadPermission gates the tenant-scoped configuration endpoints.
const ConfigReadPermission = "CONFIG_READ"

// TenantHandler handles the bearer-tier, tenant-scoped endpoints.
type TenantHandler struct {
	authz  *usecase.Authorize
	config *usecase.ConfigValues
	logger *slog.Logger
}

// NewTenantHandler creates a new tenant handler.
func NewTenantHandler(authz *usecase.Authorize, config *usecase.ConfigValues, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{authz: authz, config: config, logger: logger}
}

// principalForApp returns the request principal after verifying its tenant
// binding against the appID path parameter. A missing principal is an
// authentication failure; a tenant mismatch is an authorization failure.
func (h *TenantHandler) principalForApp(c echo.Context) (*domain.Principal, error) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil, domain.ErrAuthenticationRequired
	}
	if err := h.authz.CheckTenantMatch(&principal.Token, c.Param("appID")); err != nil {
		return nil, err
	}
	return principal, nil
}

// meResponse summarizes the authenticated principal.
type meResponse struct {
	Email       string   `json:"email"`
	UserID      string   `json:"userId"`
	AppID       string   `json:"appId"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// HandleMe returns the authenticated principal's identity and claim names.
func (h *TenantHandler) HandleMe(c echo.Context) error {
	principal, err := h.principalForApp(c)
	if err != nil {
		return err
	}

	token := principal.Token
	resp := meResponse{
		Email:       principal.Email,
		UserID:      token.User.ID,
		AppID:       token.AppID,
		Roles:       make([]string, 0, len(token.Roles)),
		Permissions: make([]string, 0, len(token.Permissions)),
	}
	for _, role := range token.Roles {
		resp.Roles = append(resp.Roles, role.Name)
	}
	for _, perm := range token.Permissions {
		resp.Permissions = append(resp.Permissions, perm.Name)
	}

	return c.JSON(http.StatusOK, resp)
}

// permissionCheckRequest lists the permission names to evaluate.
type permissionCheckRequest struct {
	Names []string `json:"names"`
}

// HandlePermissionCheck evaluates the requested permission names against the
// principal's claims.
func (h *TenantHandler) HandlePermissionCheck(c echo.Context) error {
	principal, err := h.principalForApp(c)
	if err != nil {
		return err
	}

	var req permissionCheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result := h.authz.CheckPermissions(&principal.Token, req.Names)
	return c.JSON(http.StatusOK, result)
}

// HandleRedirectURLs returns the redirect-URL map for the active deployment
// profile, read through the configuration cache.
func (h *TenantHandler) HandleRedirectURLs(c echo.Context) error {
	principal, err := h.principalForApp(c)
	if err != nil {
		return err
	}

	if !principal.Token.HasPermission(ConfigReadPermission) {
		return domain.ErrPermissionDenied
	}

	urls, err := h.config.RedirectURLs(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, urls)
}
