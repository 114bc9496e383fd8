package domain

// Role represents the access level of an authenticated caller within
// an organization.
type Role string

// Roles. Admins may mutate services and incidents, members only read.
const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// HasPermission returns true if the role satisfies the required minimum role.
func (r Role) HasPermission(min Role) bool {
	if min == RoleAdmin {
		return r == RoleAdmin
	}
	return r == RoleMember || r == RoleAdmin
}

// Identity is the resolved caller identity produced by the authentication
// provider. OrganizationID may be empty when the caller has no active
// organization; every handler must treat that as "organization not found".
type Identity struct {
	UserID         string
	OrganizationID string
	Role           Role
}
