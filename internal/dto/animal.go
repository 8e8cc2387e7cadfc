package dto

import (
	"time"

	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/utils"
)

// AnimalDTO represents an animal in API responses
type AnimalDTO struct {
	ID         uint64              `json:"id"`
	Name       string              `json:"name"`
	Species    string              `json:"species"`
	Status     models.AnimalStatus `json:"status"`
	IntakeDate time.Time           `json:"intake_date"`
	Notes      string              `json:"notes,omitempty"`
	CarerID    *string             `json:"carer_id"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// AnimalListResponse represents a paginated list of animals
type AnimalListResponse struct {
	Animals    []AnimalDTO              `json:"animals"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ReminderDTO represents a care reminder in API responses
type ReminderDTO struct {
	ID        uint64    `json:"id"`
	AnimalID  uint64    `json:"animal_id"`
	UserID    string    `json:"user_id"`
	Note      string    `json:"note"`
	DueAt     time.Time `json:"due_at"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// ToAnimalDTO converts an Animal model to AnimalDTO
func ToAnimalDTO(animal models.Animal) AnimalDTO {
	return AnimalDTO{
		ID:         animal.ID,
		Name:       animal.Name,
		Species:    animal.Species,
		Status:     animal.Status,
		IntakeDate: animal.IntakeDate,
		Notes:      animal.Notes,
		CarerID:    animal.CarerID,
		CreatedAt:  animal.CreatedAt,
		UpdatedAt:  animal.UpdatedAt,
	}
}

// ToAnimalDTOs converts animals to DTOs
func ToAnimalDTOs(animals []models.Animal) []AnimalDTO {
	dtos := make([]AnimalDTO, len(animals))
	for i, a := range animals {
		dtos[i] = ToAnimalDTO(a)
	}
	return dtos
}

// ToReminderDTO converts a Reminder model to ReminderDTO
func ToReminderDTO(reminder models.Reminder) ReminderDTO {
	return ReminderDTO{
		ID:        reminder.ID,
		AnimalID:  reminder.AnimalID,
		UserID:    reminder.UserID,
		Note:      reminder.Note,
		DueAt:     reminder.DueAt,
		Done:      reminder.Done,
		CreatedAt: reminder.CreatedAt,
	}
}

// ToReminderDTOs converts reminders to DTOs
func ToReminderDTOs(reminders []models.Reminder) []ReminderDTO {
	dtos := make([]ReminderDTO, len(reminders))
	for i, r := range reminders {
		dtos[i] = ToReminderDTO(r)
	}
	return dtos
}
