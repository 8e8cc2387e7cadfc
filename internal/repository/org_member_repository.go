package repository

import (
	"errors"

	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrLastAdmin is returned when a role change would leave an
	// organization without any admin.
	ErrLastAdmin = errors.New("org member repository: cannot demote the last admin")
)

// GormOrgMemberRepository is a GORM implementation of OrgMemberRepository
type GormOrgMemberRepository struct {
	db *gorm.DB
}

// NewOrgMemberRepository creates a new OrgMemberRepository
func NewOrgMemberRepository(db *gorm.DB) OrgMemberRepository {
	return &GormOrgMemberRepository{db: db}
}

// Find finds a member by the (orgID, userID) compound key
func (r *GormOrgMemberRepository) Find(orgID, userID string) (*models.OrgMember, error) {
	var member models.OrgMember
	if err := r.db.Where("org_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListByOrg lists all members of an organization ordered by user id
func (r *GormOrgMemberRepository) ListByOrg(orgID string) ([]models.OrgMember, error) {
	var members []models.OrgMember
	if err := r.db.Where("org_id = ?", orgID).
		Order("user_id").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListByUser lists all memberships of a user across organizations
func (r *GormOrgMemberRepository) ListByUser(userID string) ([]models.OrgMember, error) {
	var members []models.OrgMember
	if err := r.db.Where("user_id = ?", userID).
		Order("org_id").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// Create creates a new member record
func (r *GormOrgMemberRepository) Create(member *models.OrgMember) error {
	return r.db.Create(member).Error
}

// UpdateRole changes an existing member's role. The last-admin check and
// the role write run in one transaction; on server databases the org's
// admin rows are locked for the duration so two concurrent demotions
// cannot both pass the count. SQLite serializes writers on its own and
// rejects FOR UPDATE, so the lock clause is skipped there.
func (r *GormOrgMemberRepository) UpdateRole(orgID, userID string, role rbac.Role) (*models.OrgMember, error) {
	var member models.OrgMember
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ? AND user_id = ?", orgID, userID).
			First(&member).Error; err != nil {
			return err
		}

		if member.Role == rbac.RoleAdmin && role != rbac.RoleAdmin {
			// Locking clauses are invalid on aggregate queries, so the
			// admin rows themselves are selected and counted here.
			q := tx.Where("org_id = ? AND role = ?", orgID, rbac.RoleAdmin)
			if tx.Dialector.Name() != "sqlite" {
				q = q.Clauses(clause.Locking{Strength: "UPDATE"})
			}
			var admins []models.OrgMember
			if err := q.Find(&admins).Error; err != nil {
				return err
			}
			if len(admins) <= 1 {
				return ErrLastAdmin
			}
		}

		member.Role = role
		return tx.Model(&models.OrgMember{}).
			Where("org_id = ? AND user_id = ?", orgID, userID).
			Update("role", role).Error
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}
