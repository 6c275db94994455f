package domain

// UserSummary is the identity snapshot embedded in an auth token at issuance time.
type UserSummary struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Status      string `json:"status"`
	IsValidated bool   `json:"isValidated"`
	IsDeleted   bool   `json:"isDeleted"`
}

// RoleClaim is a role granted to the token holder.
type RoleClaim struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PermissionClaim is a permission granted to the token holder.
type PermissionClaim struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AuthToken is the decoded claims structure carried by a bearer token.
// Instances are immutable once issued; this service only reads them.
type AuthToken struct {
	AppID       string            `json:"appId"`
	User        UserSummary       `json:"user"`
	Roles       []RoleClaim       `json:"roles"`
	Permissions []PermissionClaim `json:"permissions"`
}

// HasPermission reports whether the token carries a permission claim with the
// exact given name.
func (t *AuthToken) HasPermission(name string) bool {
	for _, p := range t.Permissions {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Principal is the request-scoped security context established after a bearer
// token has been decoded and corroborated against the identity store.
type Principal struct {
	Email string
	Token AuthToken
}
