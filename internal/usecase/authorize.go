package usecase

import (
	"fmt"

	"authgate/internal/domain"
)

// Authorize evaluates tenant binding and permission membership for a decoded
// token. Read-only; it never mutates the token.
type Authorize struct{}

// NewAuthorize creates the authorization evaluator.
func NewAuthorize() *Authorize {
	return &Authorize{}
}

// CheckTenantMatch verifies the token is bound to the requested tenant.
// Any other tenant id is a cross-tenant access attempt, regardless of how
// valid the token itself is.
func (uc *Authorize) CheckTenantMatch(token *domain.AuthToken, requestedAppID string) error {
	if token.AppID != requestedAppID {
		return fmt.Errorf("%w: token bound to %q, requested %q", domain.ErrForbidden, token.AppID, requestedAppID)
	}
	return nil
}

// CheckPermissions reports, for each requested name, whether the token holds
// a permission claim with that exact name. Duplicate input names collapse to
// a single key; the result has one entry per distinct name.
func (uc *Authorize) CheckPermissions(token *domain.AuthToken, names []string) map[string]bool {
	result := make(map[string]bool, len(names))
	for _, name := range names {
		result[name] = token.HasPermission(name)
	}
	return result
}
