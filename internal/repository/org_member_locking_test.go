package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The sqlite-backed tests cannot exercise the row-locking branch of
// UpdateRole, so these pin the generated SQL against a postgres dialect.
func setupMockedPostgres(t *testing.T) (OrgMemberRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewOrgMemberRepository(db), mock
}

func memberRows(orgID string, role rbac.Role, userIDs ...string) *sqlmock.Rows {
	now := time.Now()
	rows := sqlmock.NewRows([]string{"org_id", "user_id", "role", "created_at", "updated_at"})
	for _, userID := range userIDs {
		rows.AddRow(orgID, userID, string(role), now, now)
	}
	return rows
}

func TestUpdateRole_DemotionLocksAdminRows(t *testing.T) {
	repo, mock := setupMockedPostgres(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "org_members" WHERE org_id = \$1 AND user_id = \$2`).
		WillReturnRows(memberRows("org-1", rbac.RoleAdmin, "admin-1"))
	// The guard selects the admin rows under the lock; a locking clause
	// on an aggregate would be rejected by postgres.
	mock.ExpectQuery(`SELECT \* FROM "org_members" WHERE org_id = \$1 AND role = \$2 FOR UPDATE`).
		WillReturnRows(memberRows("org-1", rbac.RoleAdmin, "admin-1", "admin-2"))
	mock.ExpectExec(`UPDATE "org_members" SET "role"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	member, err := repo.UpdateRole("org-1", "admin-1", rbac.RoleCoordinator)
	require.NoError(t, err)
	require.Equal(t, rbac.RoleCoordinator, member.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRole_LastAdminRollsBack(t *testing.T) {
	repo, mock := setupMockedPostgres(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "org_members" WHERE org_id = \$1 AND user_id = \$2`).
		WillReturnRows(memberRows("org-1", rbac.RoleAdmin, "admin-1"))
	mock.ExpectQuery(`SELECT \* FROM "org_members" WHERE org_id = \$1 AND role = \$2 FOR UPDATE`).
		WillReturnRows(memberRows("org-1", rbac.RoleAdmin, "admin-1"))
	mock.ExpectRollback()

	_, err := repo.UpdateRole("org-1", "admin-1", rbac.RoleCarer)
	require.ErrorIs(t, err, ErrLastAdmin)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRole_NonDemotionSkipsLock(t *testing.T) {
	repo, mock := setupMockedPostgres(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "org_members" WHERE org_id = \$1 AND user_id = \$2`).
		WillReturnRows(memberRows("org-1", rbac.RoleCarer, "carer-1"))
	mock.ExpectExec(`UPDATE "org_members" SET "role"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	member, err := repo.UpdateRole("org-1", "carer-1", rbac.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, rbac.RoleAdmin, member.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}
