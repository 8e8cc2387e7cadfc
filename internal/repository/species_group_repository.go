package repository

import (
	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"gorm.io/gorm"
)

// GormSpeciesGroupRepository is a GORM implementation of SpeciesGroupRepository
type GormSpeciesGroupRepository struct {
	db *gorm.DB
}

// NewSpeciesGroupRepository creates a new SpeciesGroupRepository
func NewSpeciesGroupRepository(db *gorm.DB) SpeciesGroupRepository {
	return &GormSpeciesGroupRepository{db: db}
}

// ListByOrg lists all species groups of an organization with species loaded
func (r *GormSpeciesGroupRepository) ListByOrg(orgID string) ([]models.SpeciesGroup, error) {
	var groups []models.SpeciesGroup
	if err := r.db.Preload("Species").
		Where("org_id = ?", orgID).
		Order("slug").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// FindByID finds a group by (id, orgID)
func (r *GormSpeciesGroupRepository) FindByID(id uint64, orgID string) (*models.SpeciesGroup, error) {
	var group models.SpeciesGroup
	if err := r.db.Preload("Species").
		Where("id = ? AND org_id = ?", id, orgID).
		First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// FindBySlug finds a group by (slug, orgID)
func (r *GormSpeciesGroupRepository) FindBySlug(slug, orgID string) (*models.SpeciesGroup, error) {
	var group models.SpeciesGroup
	if err := r.db.Preload("Species").
		Where("slug = ? AND org_id = ?", slug, orgID).
		First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// Create creates a group together with its species entries
func (r *GormSpeciesGroupRepository) Create(group *models.SpeciesGroup) error {
	return r.db.Create(group).Error
}

// Update saves changed group fields and replaces species entries when
// species is non-nil
func (r *GormSpeciesGroupRepository) Update(group *models.SpeciesGroup, species []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Species").Save(group).Error; err != nil {
			return err
		}

		if species == nil {
			return nil
		}

		if err := tx.Where("species_group_id = ?", group.ID).
			Delete(&models.SpeciesGroupEntry{}).Error; err != nil {
			return err
		}

		entries := make([]models.SpeciesGroupEntry, len(species))
		for i, name := range species {
			entries[i] = models.SpeciesGroupEntry{
				SpeciesGroupID: group.ID,
				SpeciesName:    name,
			}
		}
		if err := tx.Create(&entries).Error; err != nil {
			return err
		}
		group.Species = entries
		return nil
	})
}

// Delete removes a group, its species entries and any coordinator
// assignments pointing at it, in one transaction
func (r *GormSpeciesGroupRepository) Delete(id uint64, orgID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var group models.SpeciesGroup
		if err := tx.Where("id = ? AND org_id = ?", id, orgID).
			First(&group).Error; err != nil {
			return err
		}

		if err := tx.Where("species_group_id = ?", id).
			Delete(&models.SpeciesGroupEntry{}).Error; err != nil {
			return err
		}

		if err := tx.Where("org_id = ? AND species_group_id = ?", orgID, id).
			Delete(&models.CoordinatorAssignment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&group).Error
	})
}

// Assign links a coordinator to a species group
func (r *GormSpeciesGroupRepository) Assign(assignment *models.CoordinatorAssignment) error {
	return r.db.Create(assignment).Error
}

// Unassign removes a coordinator/species-group link
func (r *GormSpeciesGroupRepository) Unassign(orgID, userID string, speciesGroupID uint64) error {
	result := r.db.Where("org_id = ? AND user_id = ? AND species_group_id = ?", orgID, userID, speciesGroupID).
		Delete(&models.CoordinatorAssignment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAssignedGroups lists the species groups assigned to a member
func (r *GormSpeciesGroupRepository) ListAssignedGroups(orgID, userID string) ([]models.SpeciesGroup, error) {
	var assignments []models.CoordinatorAssignment
	if err := r.db.Preload("SpeciesGroup.Species").
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	groups := make([]models.SpeciesGroup, 0, len(assignments))
	for _, a := range assignments {
		groups = append(groups, a.SpeciesGroup)
	}
	return groups, nil
}
