package rbac

// Action is a fine-grained capability. The set is closed: every action the
// API gates on is listed here and has an entry in the permission table.
type Action string

const (
	ActionAnimalView         Action = "animal:view"
	ActionAnimalCreate       Action = "animal:create"
	ActionAnimalUpdate       Action = "animal:update"
	ActionAnimalDelete       Action = "animal:delete"
	ActionAnimalAssignCarer  Action = "animal:assign_carer"
	ActionUserManage         Action = "user:manage"
	ActionSpeciesGroupManage Action = "species_group:manage"
	ActionCoordinatorAssign  Action = "coordinator:assign"
	ActionReminderCreate     Action = "reminder:create"
	ActionReminderDeleteAny  Action = "reminder:delete_any"
	ActionAuditView          Action = "audit:view"
)

// atLeast expands a minimum-role threshold into the explicit set of roles
// that satisfy it.
func atLeast(min Role) []Role {
	var roles []Role
	for _, r := range AllRoles() {
		if r.AtLeast(min) {
			roles = append(roles, r)
		}
	}
	return roles
}

// permissions maps each action to the roles allowed to perform it. Most
// entries are simple thresholds; any exception is spelled out explicitly.
// Adding a role or an action means revisiting this table.
var permissions = map[Action][]Role{
	ActionAnimalView:         atLeast(RoleCarer),
	ActionAnimalCreate:       atLeast(RoleCarer),
	ActionAnimalUpdate:       atLeast(RoleCarer),
	ActionAnimalDelete:       atLeast(RoleAdmin),
	ActionAnimalAssignCarer:  atLeast(RoleCoordinator),
	ActionUserManage:         atLeast(RoleAdmin),
	ActionSpeciesGroupManage: atLeast(RoleAdmin),
	ActionCoordinatorAssign:  atLeast(RoleAdmin),
	ActionReminderCreate:     atLeast(RoleCarer),
	ActionReminderDeleteAny:  atLeast(RoleCoordinator),
	ActionAuditView:          atLeast(RoleAdmin),
}

// HasPermission reports whether role may perform action. Unknown roles and
// unknown actions are always denied.
func HasPermission(role Role, action Action) bool {
	allowed, ok := permissions[action]
	if !ok {
		return false
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// AllActions lists every action in the permission table.
func AllActions() []Action {
	return []Action{
		ActionAnimalView,
		ActionAnimalCreate,
		ActionAnimalUpdate,
		ActionAnimalDelete,
		ActionAnimalAssignCarer,
		ActionUserManage,
		ActionSpeciesGroupManage,
		ActionCoordinatorAssign,
		ActionReminderCreate,
		ActionReminderDeleteAny,
		ActionAuditView,
	}
}
