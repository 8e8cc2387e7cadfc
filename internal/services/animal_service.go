package services

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
	"github.com/quollhaven/wildlife-rehab-api/internal/repository"
	"github.com/quollhaven/wildlife-rehab-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrAnimalNotFound      = errors.New("animal not found")
	ErrAnimalNameRequired  = errors.New("animal name is required")
	ErrSpeciesRequired     = errors.New("species is required")
	ErrInvalidAnimalStatus = errors.New("invalid animal status")
	ErrCarerNotMember      = errors.New("carer is not a member of the organization")
)

// AnimalService handles animal records. Every operation runs through the
// permission table and, for record-level access, the scoping service.
type AnimalService struct {
	animalRepo repository.AnimalRepository
	memberRepo repository.OrgMemberRepository
	members    *MemberService
	access     *AccessService
	audit      *AuditService
}

// NewAnimalService creates a new AnimalService.
func NewAnimalService(animalRepo repository.AnimalRepository, memberRepo repository.OrgMemberRepository, members *MemberService, access *AccessService, audit *AuditService) *AnimalService {
	return &AnimalService{
		animalRepo: animalRepo,
		memberRepo: memberRepo,
		members:    members,
		access:     access,
		audit:      audit,
	}
}

// ListAnimalsInput represents filters for listing animals.
type ListAnimalsInput struct {
	UserID   string
	OrgID    string
	Status   *models.AnimalStatus
	Page     int
	PageSize int
}

// ListAnimals returns the animals visible to the caller. Carers see their
// own assignments, coordinators the species in their assigned groups,
// everyone else the whole organization.
func (s *AnimalService) ListAnimals(input ListAnimalsInput) ([]models.Animal, int64, error) {
	member, err := s.members.RequirePermission(input.UserID, input.OrgID, rbac.ActionAnimalView)
	if err != nil {
		return nil, 0, err
	}

	pagination := utils.NormalizePagination(input.Page, input.PageSize)
	filter := repository.AnimalFilter{
		OrgID:    input.OrgID,
		Status:   input.Status,
		Page:     pagination.Page,
		PageSize: pagination.Limit,
	}

	switch member.Role {
	case rbac.RoleCarer:
		filter.CarerID = &input.UserID
	case rbac.RoleCoordinator:
		visible, err := s.access.VisibleSpecies(input.UserID, input.OrgID)
		if err != nil {
			return nil, 0, err
		}
		names := make([]string, 0, len(visible))
		for name := range visible {
			names = append(names, name)
		}
		sort.Strings(names)
		filter.Species = names
	}

	animals, total, err := s.animalRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list animals: %w", err)
	}
	return animals, total, nil
}

// GetAnimal returns one animal, subject to record-level scoping. Animals
// outside the caller's scope are reported as not found.
func (s *AnimalService) GetAnimal(userID, orgID string, id uint64) (*models.Animal, error) {
	if _, err := s.members.RequirePermission(userID, orgID, rbac.ActionAnimalView); err != nil {
		return nil, err
	}

	animal, err := s.animalRepo.FindByID(id, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnimalNotFound
		}
		return nil, fmt.Errorf("failed to find animal: %w", err)
	}

	ok, err := s.access.CanAccessAnimal(userID, orgID, animal)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAnimalNotFound
	}
	return animal, nil
}

// CreateAnimalInput represents input for creating an animal record.
type CreateAnimalInput struct {
	UserID     string
	OrgID      string
	Name       string
	Species    string
	Notes      string
	IntakeDate *time.Time
	CarerID    *string
}

// CreateAnimal records a new intake.
func (s *AnimalService) CreateAnimal(input CreateAnimalInput) (*models.Animal, error) {
	if _, err := s.members.RequirePermission(input.UserID, input.OrgID, rbac.ActionAnimalCreate); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrAnimalNameRequired
	}
	if strings.TrimSpace(input.Species) == "" {
		return nil, ErrSpeciesRequired
	}

	intake := time.Now()
	if input.IntakeDate != nil {
		intake = *input.IntakeDate
	}

	if input.CarerID != nil {
		if err := s.verifyCarer(input.OrgID, *input.CarerID); err != nil {
			return nil, err
		}
	}

	animal := &models.Animal{
		OrgID:      input.OrgID,
		Name:       strings.TrimSpace(input.Name),
		Species:    strings.TrimSpace(input.Species),
		Status:     models.AnimalStatusInCare,
		IntakeDate: intake,
		Notes:      input.Notes,
		CarerID:    input.CarerID,
	}
	if err := s.animalRepo.Create(animal); err != nil {
		return nil, fmt.Errorf("failed to create animal: %w", err)
	}

	s.audit.Record(AuditEntry{
		UserID:   input.UserID,
		OrgID:    input.OrgID,
		Action:   models.AuditActionCreate,
		Entity:   EntityAnimal,
		EntityID: strconv.FormatUint(animal.ID, 10),
		Metadata: map[string]any{"species": animal.Species},
	})
	return animal, nil
}

// UpdateAnimalInput represents a partial animal update. Nil fields are
// left unchanged.
type UpdateAnimalInput struct {
	UserID  string
	OrgID   string
	ID      uint64
	Name    *string
	Status  *models.AnimalStatus
	Notes   *string
	CarerID *string
	// ClearCarer unassigns the carer when true.
	ClearCarer bool
}

// UpdateAnimal updates an animal within the caller's scope.
func (s *AnimalService) UpdateAnimal(input UpdateAnimalInput) (*models.Animal, error) {
	if _, err := s.members.RequirePermission(input.UserID, input.OrgID, rbac.ActionAnimalUpdate); err != nil {
		return nil, err
	}

	animal, err := s.animalRepo.FindByID(input.ID, input.OrgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnimalNotFound
		}
		return nil, fmt.Errorf("failed to find animal: %w", err)
	}

	ok, err := s.access.CanAccessAnimal(input.UserID, input.OrgID, animal)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAnimalNotFound
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrAnimalNameRequired
		}
		animal.Name = strings.TrimSpace(*input.Name)
	}
	if input.Status != nil {
		switch *input.Status {
		case models.AnimalStatusInCare, models.AnimalStatusReleased, models.AnimalStatusDeceased:
			animal.Status = *input.Status
		default:
			return nil, ErrInvalidAnimalStatus
		}
	}
	if input.Notes != nil {
		animal.Notes = *input.Notes
	}

	if input.ClearCarer {
		animal.CarerID = nil
	} else if input.CarerID != nil {
		// Reassigning the carer is a coordinator-level capability.
		if _, err := s.members.RequirePermission(input.UserID, input.OrgID, rbac.ActionAnimalAssignCarer); err != nil {
			return nil, err
		}
		if err := s.verifyCarer(input.OrgID, *input.CarerID); err != nil {
			return nil, err
		}
		animal.CarerID = input.CarerID
	}

	if err := s.animalRepo.Update(animal); err != nil {
		return nil, fmt.Errorf("failed to update animal: %w", err)
	}

	s.audit.Record(AuditEntry{
		UserID:   input.UserID,
		OrgID:    input.OrgID,
		Action:   models.AuditActionUpdate,
		Entity:   EntityAnimal,
		EntityID: strconv.FormatUint(animal.ID, 10),
	})
	return animal, nil
}

// DeleteAnimal removes an animal record. Admin only.
func (s *AnimalService) DeleteAnimal(userID, orgID string, id uint64) error {
	if _, err := s.members.RequirePermission(userID, orgID, rbac.ActionAnimalDelete); err != nil {
		return err
	}

	if err := s.animalRepo.Delete(id, orgID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnimalNotFound
		}
		return fmt.Errorf("failed to delete animal: %w", err)
	}

	s.audit.Record(AuditEntry{
		UserID:   userID,
		OrgID:    orgID,
		Action:   models.AuditActionDelete,
		Entity:   EntityAnimal,
		EntityID: strconv.FormatUint(id, 10),
	})
	return nil
}

// verifyCarer checks the carer id refers to a member of the organization.
func (s *AnimalService) verifyCarer(orgID, carerID string) error {
	if _, err := s.memberRepo.Find(orgID, carerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCarerNotMember
		}
		return fmt.Errorf("failed to verify carer: %w", err)
	}
	return nil
}
