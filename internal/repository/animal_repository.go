package repository

import (
	"github.com/quollhaven/wildlife-rehab-api/internal/database"
	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/utils"
	"gorm.io/gorm"
)

// GormAnimalRepository is a GORM implementation of AnimalRepository
type GormAnimalRepository struct {
	db *gorm.DB
}

// NewAnimalRepository creates a new AnimalRepository
func NewAnimalRepository(db *gorm.DB) AnimalRepository {
	return &GormAnimalRepository{db: db}
}

// Create creates a new animal record
func (r *GormAnimalRepository) Create(animal *models.Animal) error {
	return r.db.Create(animal).Error
}

// FindByID finds an animal by (id, orgID)
func (r *GormAnimalRepository) FindByID(id uint64, orgID string) (*models.Animal, error) {
	var animal models.Animal
	if err := r.db.Where("id = ? AND org_id = ?", id, orgID).
		First(&animal).Error; err != nil {
		return nil, err
	}
	return &animal, nil
}

// List retrieves animals with filtering and pagination. Species and
// CarerID carry the caller's visibility restriction so scoping happens in
// SQL rather than after the fact.
func (r *GormAnimalRepository) List(filter AnimalFilter) ([]models.Animal, int64, error) {
	query := r.db.Model(&models.Animal{}).Scopes(database.TenantScope(filter.OrgID))

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Species != nil {
		query = query.Where("species IN ?", filter.Species)
	}
	if filter.CarerID != nil {
		query = query.Where("carer_id = ?", *filter.CarerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("intake_date desc, id desc")
	if filter.PageSize > 0 {
		query = query.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	var animals []models.Animal
	if err := query.Find(&animals).Error; err != nil {
		return nil, 0, err
	}
	return animals, total, nil
}

// Update updates an animal
func (r *GormAnimalRepository) Update(animal *models.Animal) error {
	return r.db.Save(animal).Error
}

// Delete soft deletes an animal within its org
func (r *GormAnimalRepository) Delete(id uint64, orgID string) error {
	result := r.db.Where("id = ? AND org_id = ?", id, orgID).
		Delete(&models.Animal{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
