package services

import (
	"context"
	"testing"

	"github.com/quollhaven/wildlife-rehab-api/internal/identity"
	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
	"github.com/quollhaven/wildlife-rehab-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeDirectory is an in-memory identity.Client.
type fakeDirectory struct {
	tokens      map[string]string
	memberships map[string][]identity.Membership
	err         error
}

func (f *fakeDirectory) VerifySessionToken(_ context.Context, token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	userID, ok := f.tokens[token]
	if !ok {
		return "", identity.ErrInvalidToken
	}
	return userID, nil
}

func (f *fakeDirectory) OrganizationMemberships(_ context.Context, userID string) ([]identity.Membership, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.memberships[userID], nil
}

type serviceTestEnv struct {
	db        *gorm.DB
	directory *fakeDirectory
	audit     *AuditService
	members   *MemberService
	access    *AccessService
	groups    *SpeciesGroupService
	animals   *AnimalService
	reminders *ReminderService
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.OrgMember{},
		&models.SpeciesGroup{},
		&models.SpeciesGroupEntry{},
		&models.CoordinatorAssignment{},
		&models.AuditLog{},
		&models.Animal{},
		&models.Reminder{},
	)
	require.NoError(t, err)

	memberRepo := repository.NewOrgMemberRepository(db)
	groupRepo := repository.NewSpeciesGroupRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	animalRepo := repository.NewAnimalRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	directory := &fakeDirectory{
		tokens:      map[string]string{},
		memberships: map[string][]identity.Membership{},
	}

	audit := NewAuditService(auditRepo)
	members := NewMemberService(memberRepo, directory, audit)
	access := NewAccessService(memberRepo, groupRepo)
	groups := NewSpeciesGroupService(groupRepo, memberRepo, audit)
	animals := NewAnimalService(animalRepo, memberRepo, members, access, audit)
	reminders := NewReminderService(reminderRepo, members, animals, audit)

	env := &serviceTestEnv{
		db:        db,
		directory: directory,
		audit:     audit,
		members:   members,
		access:    access,
		groups:    groups,
		animals:   animals,
		reminders: reminders,
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		audit.Wait()
		sqlDB.Close()
	})

	return env
}

func (env *serviceTestEnv) createMember(t *testing.T, orgID, userID string, role rbac.Role) *models.OrgMember {
	t.Helper()
	member := &models.OrgMember{OrgID: orgID, UserID: userID, Role: role}
	require.NoError(t, env.db.Create(member).Error)
	return member
}

func (env *serviceTestEnv) createAnimal(t *testing.T, orgID, name, species string, carerID *string) *models.Animal {
	t.Helper()
	animal := &models.Animal{
		OrgID:   orgID,
		Name:    name,
		Species: species,
		Status:  models.AnimalStatusInCare,
		CarerID: carerID,
	}
	require.NoError(t, env.db.Create(animal).Error)
	return animal
}

// auditEntriesFor waits for in-flight writes and returns the org's audit
// trail, oldest first.
func (env *serviceTestEnv) auditEntriesFor(t *testing.T, orgID string) []models.AuditLog {
	t.Helper()
	env.audit.Wait()
	var entries []models.AuditLog
	require.NoError(t, env.db.Where("org_id = ?", orgID).Order("id").Find(&entries).Error)
	return entries
}
