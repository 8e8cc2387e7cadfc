package repository

import (
	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
)

// OrgMemberRepository defines the interface for role record data access.
// Every lookup is keyed by org id; a record is only ever visible inside
// its own tenant.
type OrgMemberRepository interface {
	// Find finds a member by the (orgID, userID) compound key
	Find(orgID, userID string) (*models.OrgMember, error)

	// ListByOrg lists all members of an organization ordered by user id
	ListByOrg(orgID string) ([]models.OrgMember, error)

	// ListByUser lists all memberships of a user across organizations
	ListByUser(userID string) ([]models.OrgMember, error)

	// Create creates a new member record
	Create(member *models.OrgMember) error

	// UpdateRole changes an existing member's role. The member must exist,
	// and demoting the organization's last admin fails with ErrLastAdmin.
	// The check and the write share one transaction.
	UpdateRole(orgID, userID string, role rbac.Role) (*models.OrgMember, error)
}

// SpeciesGroupRepository defines the interface for species group and
// coordinator assignment data access.
type SpeciesGroupRepository interface {
	// ListByOrg lists all species groups of an organization with species loaded
	ListByOrg(orgID string) ([]models.SpeciesGroup, error)

	// FindByID finds a group by (id, orgID); ids from other tenants behave
	// like missing records
	FindByID(id uint64, orgID string) (*models.SpeciesGroup, error)

	// FindBySlug finds a group by (slug, orgID)
	FindBySlug(slug, orgID string) (*models.SpeciesGroup, error)

	// Create creates a group together with its species entries
	Create(group *models.SpeciesGroup) error

	// Update saves changed group fields and replaces species entries when
	// species is non-nil
	Update(group *models.SpeciesGroup, species []string) error

	// Delete removes a group, its species entries and any coordinator
	// assignments pointing at it, in one transaction
	Delete(id uint64, orgID string) error

	// Assign links a coordinator to a species group
	Assign(assignment *models.CoordinatorAssignment) error

	// Unassign removes a coordinator/species-group link
	Unassign(orgID, userID string, speciesGroupID uint64) error

	// ListAssignedGroups lists the species groups assigned to a member,
	// species entries included
	ListAssignedGroups(orgID, userID string) ([]models.SpeciesGroup, error)
}

// AuditLogFilter holds validated filtering options for audit queries. All
// fields are optional; zero values mean "no filter".
type AuditLogFilter struct {
	OrgID     string
	Action    models.AuditAction
	Entity    string
	UserID    string
	SortField string
	SortDesc  bool
	Page      int
	PageSize  int
}

// AuditLogRepository defines the interface for audit log data access.
// Append-only: there is deliberately no update or delete.
type AuditLogRepository interface {
	// Create appends one audit log entry
	Create(entry *models.AuditLog) error

	// List retrieves entries for an organization with filtering and pagination
	List(filter AuditLogFilter) ([]models.AuditLog, int64, error)
}

// AnimalFilter holds filtering options for listing animals.
type AnimalFilter struct {
	OrgID    string
	Status   *models.AnimalStatus
	Species  []string
	CarerID  *string
	Page     int
	PageSize int
}

// AnimalRepository defines the interface for animal data access
type AnimalRepository interface {
	// Create creates a new animal record
	Create(animal *models.Animal) error

	// FindByID finds an animal by (id, orgID)
	FindByID(id uint64, orgID string) (*models.Animal, error)

	// List retrieves animals with filtering and pagination
	List(filter AnimalFilter) ([]models.Animal, int64, error)

	// Update updates an animal
	Update(animal *models.Animal) error

	// Delete soft deletes an animal within its org
	Delete(id uint64, orgID string) error
}

// ReminderRepository defines the interface for reminder data access
type ReminderRepository interface {
	// Create creates a new reminder
	Create(reminder *models.Reminder) error

	// FindByID finds a reminder by (id, orgID)
	FindByID(id uint64, orgID string) (*models.Reminder, error)

	// ListByAnimal lists reminders for one animal
	ListByAnimal(orgID string, animalID uint64) ([]models.Reminder, error)

	// Update updates a reminder
	Update(reminder *models.Reminder) error

	// Delete soft deletes a reminder within its org
	Delete(id uint64, orgID string) error
}
