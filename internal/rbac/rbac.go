package rbac

// Role is a member's role within one organization. Roles form a total
// order from least to most privileged.
type Role string

const (
	RoleCarer          Role = "carer"
	RoleCarerAll       Role = "carer_all"
	RoleCoordinator    Role = "coordinator"
	RoleCoordinatorAll Role = "coordinator_all"
	RoleAdmin          Role = "admin"
)

// roleRank orders roles from least to most privileged. Roles missing from
// this table rank below every known role and are denied everywhere.
var roleRank = map[Role]int{
	RoleCarer:          0,
	RoleCarerAll:       1,
	RoleCoordinator:    2,
	RoleCoordinatorAll: 3,
	RoleAdmin:          4,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r is at least as privileged as min. Unknown
// roles are never at least anything.
func (r Role) AtLeast(min Role) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	minRank, ok := roleRank[min]
	if !ok {
		return false
	}
	return rank >= minRank
}

// AllRoles lists every known role in privilege order.
func AllRoles() []Role {
	return []Role{RoleCarer, RoleCarerAll, RoleCoordinator, RoleCoordinatorAll, RoleAdmin}
}

// ParseRole validates a role string from a request payload.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}
