package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleOrdering(t *testing.T) {
	require.True(t, RoleAdmin.AtLeast(RoleCarer))
	require.True(t, RoleAdmin.AtLeast(RoleAdmin))
	require.True(t, RoleCoordinatorAll.AtLeast(RoleCoordinator))
	require.True(t, RoleCoordinator.AtLeast(RoleCarerAll))
	require.True(t, RoleCarerAll.AtLeast(RoleCarer))

	require.False(t, RoleCarer.AtLeast(RoleCarerAll))
	require.False(t, RoleCoordinator.AtLeast(RoleCoordinatorAll))
	require.False(t, RoleCoordinatorAll.AtLeast(RoleAdmin))
}

func TestUnknownRoleRanksNowhere(t *testing.T) {
	unknown := Role("superuser")
	require.False(t, unknown.Valid())
	for _, r := range AllRoles() {
		require.False(t, unknown.AtLeast(r), "unknown role should not reach %s", r)
	}
	require.False(t, RoleAdmin.AtLeast(unknown))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("coordinator_all")
	require.True(t, ok)
	require.Equal(t, RoleCoordinatorAll, r)

	_, ok = ParseRole("Coordinator")
	require.False(t, ok)

	_, ok = ParseRole("")
	require.False(t, ok)
}

func TestPermissionTableCoversEveryAction(t *testing.T) {
	// Every action must have an explicit entry; a missing entry would
	// deny all roles and usually signals a forgotten table update.
	for _, action := range AllActions() {
		roles, ok := permissions[action]
		require.True(t, ok, "no permission entry for %s", action)
		require.NotEmpty(t, roles, "empty permission entry for %s", action)
	}
}

func TestHasPermissionThresholds(t *testing.T) {
	tests := []struct {
		role    Role
		action  Action
		allowed bool
	}{
		{RoleCarer, ActionAnimalView, true},
		{RoleCarer, ActionAnimalCreate, true},
		{RoleCarer, ActionReminderCreate, true},
		{RoleCarer, ActionAnimalAssignCarer, false},
		{RoleCarer, ActionReminderDeleteAny, false},
		{RoleCarer, ActionUserManage, false},
		{RoleCarerAll, ActionAnimalAssignCarer, false},
		{RoleCoordinator, ActionAnimalAssignCarer, true},
		{RoleCoordinator, ActionReminderDeleteAny, true},
		{RoleCoordinator, ActionAnimalDelete, false},
		{RoleCoordinator, ActionSpeciesGroupManage, false},
		{RoleCoordinatorAll, ActionCoordinatorAssign, false},
		{RoleAdmin, ActionAnimalDelete, true},
		{RoleAdmin, ActionUserManage, true},
		{RoleAdmin, ActionSpeciesGroupManage, true},
		{RoleAdmin, ActionCoordinatorAssign, true},
		{RoleAdmin, ActionAuditView, true},
	}

	for _, tt := range tests {
		require.Equal(t, tt.allowed, HasPermission(tt.role, tt.action),
			"role=%s action=%s", tt.role, tt.action)
	}
}

func TestHasPermissionFailsClosed(t *testing.T) {
	require.False(t, HasPermission(Role("superuser"), ActionAnimalView))
	require.False(t, HasPermission(Role(""), ActionAnimalView))
	require.False(t, HasPermission(RoleAdmin, Action("animal:teleport")))
}
