package repository

import (
	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"gorm.io/gorm"
)

// GormReminderRepository is a GORM implementation of ReminderRepository
type GormReminderRepository struct {
	db *gorm.DB
}

// NewReminderRepository creates a new ReminderRepository
func NewReminderRepository(db *gorm.DB) ReminderRepository {
	return &GormReminderRepository{db: db}
}

// Create creates a new reminder
func (r *GormReminderRepository) Create(reminder *models.Reminder) error {
	return r.db.Create(reminder).Error
}

// FindByID finds a reminder by (id, orgID)
func (r *GormReminderRepository) FindByID(id uint64, orgID string) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := r.db.Where("id = ? AND org_id = ?", id, orgID).
		First(&reminder).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

// ListByAnimal lists reminders for one animal
func (r *GormReminderRepository) ListByAnimal(orgID string, animalID uint64) ([]models.Reminder, error) {
	var reminders []models.Reminder
	if err := r.db.Where("org_id = ? AND animal_id = ?", orgID, animalID).
		Order("due_at").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// Update updates a reminder
func (r *GormReminderRepository) Update(reminder *models.Reminder) error {
	return r.db.Save(reminder).Error
}

// Delete soft deletes a reminder within its org
func (r *GormReminderRepository) Delete(id uint64, orgID string) error {
	result := r.db.Where("id = ? AND org_id = ?", id, orgID).
		Delete(&models.Reminder{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
