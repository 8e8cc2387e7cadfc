package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
	"github.com/quollhaven/wildlife-rehab-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrReminderNotFound     = errors.New("reminder not found")
	ErrReminderNoteRequired = errors.New("reminder note is required")
)

// ReminderService handles care reminders. A reminder belongs to an animal
// the creator can access; deleting someone else's reminder needs
// reminder:delete_any.
type ReminderService struct {
	reminderRepo repository.ReminderRepository
	members      *MemberService
	animals      *AnimalService
	audit        *AuditService
}

// NewReminderService creates a new ReminderService.
func NewReminderService(reminderRepo repository.ReminderRepository, members *MemberService, animals *AnimalService, audit *AuditService) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		members:      members,
		animals:      animals,
		audit:        audit,
	}
}

// CreateReminderInput represents input for creating a reminder.
type CreateReminderInput struct {
	UserID   string
	OrgID    string
	AnimalID uint64
	Note     string
	DueAt    time.Time
}

// CreateReminder attaches a reminder to an animal the caller can access.
func (s *ReminderService) CreateReminder(input CreateReminderInput) (*models.Reminder, error) {
	if _, err := s.members.RequirePermission(input.UserID, input.OrgID, rbac.ActionReminderCreate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Note) == "" {
		return nil, ErrReminderNoteRequired
	}

	// Animal access is scoped per caller; invisible animals read as missing.
	if _, err := s.animals.GetAnimal(input.UserID, input.OrgID, input.AnimalID); err != nil {
		return nil, err
	}

	reminder := &models.Reminder{
		OrgID:    input.OrgID,
		AnimalID: input.AnimalID,
		UserID:   input.UserID,
		Note:     strings.TrimSpace(input.Note),
		DueAt:    input.DueAt,
	}
	if err := s.reminderRepo.Create(reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	s.audit.Record(AuditEntry{
		UserID:   input.UserID,
		OrgID:    input.OrgID,
		Action:   models.AuditActionCreate,
		Entity:   EntityReminder,
		EntityID: strconv.FormatUint(reminder.ID, 10),
		Metadata: map[string]any{"animal_id": input.AnimalID},
	})
	return reminder, nil
}

// ListReminders lists reminders for an animal the caller can access.
func (s *ReminderService) ListReminders(userID, orgID string, animalID uint64) ([]models.Reminder, error) {
	if _, err := s.animals.GetAnimal(userID, orgID, animalID); err != nil {
		return nil, err
	}

	reminders, err := s.reminderRepo.ListByAnimal(orgID, animalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

// CompleteReminder marks a reminder done.
func (s *ReminderService) CompleteReminder(userID, orgID string, id uint64) (*models.Reminder, error) {
	reminder, err := s.findAccessible(userID, orgID, id)
	if err != nil {
		return nil, err
	}

	reminder.Done = true
	if err := s.reminderRepo.Update(reminder); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}

	s.audit.Record(AuditEntry{
		UserID:   userID,
		OrgID:    orgID,
		Action:   models.AuditActionUpdate,
		Entity:   EntityReminder,
		EntityID: strconv.FormatUint(id, 10),
	})
	return reminder, nil
}

// DeleteReminder removes a reminder. Creators may delete their own;
// anyone else needs reminder:delete_any.
func (s *ReminderService) DeleteReminder(userID, orgID string, id uint64) error {
	reminder, err := s.findAccessible(userID, orgID, id)
	if err != nil {
		return err
	}

	if reminder.UserID != userID {
		if _, err := s.members.RequirePermission(userID, orgID, rbac.ActionReminderDeleteAny); err != nil {
			return err
		}
	}

	if err := s.reminderRepo.Delete(id, orgID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReminderNotFound
		}
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	s.audit.Record(AuditEntry{
		UserID:   userID,
		OrgID:    orgID,
		Action:   models.AuditActionDelete,
		Entity:   EntityReminder,
		EntityID: strconv.FormatUint(id, 10),
	})
	return nil
}

func (s *ReminderService) findAccessible(userID, orgID string, id uint64) (*models.Reminder, error) {
	reminder, err := s.reminderRepo.FindByID(id, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("failed to find reminder: %w", err)
	}

	// The reminder is visible only when its animal is.
	if _, err := s.animals.GetAnimal(userID, orgID, reminder.AnimalID); err != nil {
		if errors.Is(err, ErrAnimalNotFound) {
			return nil, ErrReminderNotFound
		}
		return nil, err
	}
	return reminder, nil
}
