package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/quollhaven/wildlife-rehab-api/internal/constants"
	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
	"github.com/quollhaven/wildlife-rehab-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrSpeciesGroupNotFound = errors.New("species group not found")
	ErrDuplicateSlug        = errors.New("a species group with this slug already exists")
	ErrNoSpecies            = errors.New("at least one species name is required")
	ErrTooManySpecies       = errors.New("too many species names")
	ErrInvalidSlug          = errors.New("slug is required")
	ErrNotCoordinator       = errors.New("target member does not hold a coordinator role")
	ErrAlreadyAssigned      = errors.New("coordinator is already assigned to this species group")
)

// SpeciesGroupService manages species groups and coordinator assignments
// for one tenant at a time. All lookups go through (id, orgID) compound
// keys, so ids guessed from another tenant behave like missing records.
type SpeciesGroupService struct {
	groupRepo  repository.SpeciesGroupRepository
	memberRepo repository.OrgMemberRepository
	audit      *AuditService
}

// NewSpeciesGroupService creates a new SpeciesGroupService.
func NewSpeciesGroupService(groupRepo repository.SpeciesGroupRepository, memberRepo repository.OrgMemberRepository, audit *AuditService) *SpeciesGroupService {
	return &SpeciesGroupService{
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		audit:      audit,
	}
}

// ListGroups lists the organization's species groups. Reads are open to
// any member; the handler enforces membership.
func (s *SpeciesGroupService) ListGroups(orgID string) ([]models.SpeciesGroup, error) {
	groups, err := s.groupRepo.ListByOrg(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list species groups: %w", err)
	}
	return groups, nil
}

// GetGroup returns one species group by (id, orgID).
func (s *SpeciesGroupService) GetGroup(id uint64, orgID string) (*models.SpeciesGroup, error) {
	group, err := s.groupRepo.FindByID(id, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpeciesGroupNotFound
		}
		return nil, fmt.Errorf("failed to find species group: %w", err)
	}
	return group, nil
}

// CreateGroupInput represents parameters to create a species group.
type CreateGroupInput struct {
	OrgID       string
	ActorID     string
	Slug        string
	Name        string
	Description string
	Species     []string
}

// CreateGroup creates a species group with its species entries.
func (s *SpeciesGroupService) CreateGroup(input CreateGroupInput) (*models.SpeciesGroup, error) {
	slug := strings.TrimSpace(strings.ToLower(input.Slug))
	if slug == "" {
		return nil, ErrInvalidSlug
	}

	species := normalizeSpecies(input.Species)
	if len(species) == 0 {
		return nil, ErrNoSpecies
	}
	if len(species) > constants.MaxSpeciesPerGroup {
		return nil, ErrTooManySpecies
	}

	if _, err := s.groupRepo.FindBySlug(slug, input.OrgID); err == nil {
		return nil, ErrDuplicateSlug
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}

	group := &models.SpeciesGroup{
		OrgID:       input.OrgID,
		Slug:        slug,
		Name:        input.Name,
		Description: input.Description,
	}
	for _, name := range species {
		group.Species = append(group.Species, models.SpeciesGroupEntry{SpeciesName: name})
	}

	if err := s.groupRepo.Create(group); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("failed to create species group: %w", err)
	}

	s.audit.Record(AuditEntry{
		UserID:   input.ActorID,
		OrgID:    input.OrgID,
		Action:   models.AuditActionCreate,
		Entity:   EntitySpeciesGroup,
		EntityID: strconv.FormatUint(group.ID, 10),
		Metadata: map[string]any{"slug": slug},
	})
	return group, nil
}

// UpdateGroupInput represents a partial species group update. Nil fields
// are left unchanged.
type UpdateGroupInput struct {
	OrgID       string
	ActorID     string
	ID          uint64
	Name        *string
	Description *string
	Species     []string
}

// UpdateGroup updates a species group's fields and, when species is
// provided, replaces its species entries.
func (s *SpeciesGroupService) UpdateGroup(input UpdateGroupInput) (*models.SpeciesGroup, error) {
	group, err := s.GetGroup(input.ID, input.OrgID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		group.Name = *input.Name
	}
	if input.Description != nil {
		group.Description = *input.Description
	}

	var species []string
	if input.Species != nil {
		species = normalizeSpecies(input.Species)
		if len(species) == 0 {
			return nil, ErrNoSpecies
		}
		if len(species) > constants.MaxSpeciesPerGroup {
			return nil, ErrTooManySpecies
		}
	}

	if err := s.groupRepo.Update(group, species); err != nil {
		return nil, fmt.Errorf("failed to update species group: %w", err)
	}

	s.audit.Record(AuditEntry{
		UserID:   input.ActorID,
		OrgID:    input.OrgID,
		Action:   models.AuditActionUpdate,
		Entity:   EntitySpeciesGroup,
		EntityID: strconv.FormatUint(group.ID, 10),
	})
	return group, nil
}

// DeleteGroup removes a species group and its coordinator assignments.
func (s *SpeciesGroupService) DeleteGroup(actorID string, id uint64, orgID string) error {
	if err := s.groupRepo.Delete(id, orgID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSpeciesGroupNotFound
		}
		return fmt.Errorf("failed to delete species group: %w", err)
	}

	s.audit.Record(AuditEntry{
		UserID:   actorID,
		OrgID:    orgID,
		Action:   models.AuditActionDelete,
		Entity:   EntitySpeciesGroup,
		EntityID: strconv.FormatUint(id, 10),
	})
	return nil
}

// AssignCoordinator links a coordinator to a species group. The target
// must be a member of the same organization holding a coordinator role,
// and the group must belong to the organization.
func (s *SpeciesGroupService) AssignCoordinator(actorID, orgID, targetID string, groupID uint64) (*models.CoordinatorAssignment, error) {
	target, err := s.memberRepo.Find(orgID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if target.Role != rbac.RoleCoordinator {
		return nil, ErrNotCoordinator
	}

	if _, err := s.GetGroup(groupID, orgID); err != nil {
		return nil, err
	}

	assignment := &models.CoordinatorAssignment{
		OrgID:          orgID,
		UserID:         targetID,
		SpeciesGroupID: groupID,
	}
	if err := s.groupRepo.Assign(assignment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyAssigned
		}
		return nil, fmt.Errorf("failed to assign coordinator: %w", err)
	}

	s.audit.Record(AuditEntry{
		UserID:   actorID,
		OrgID:    orgID,
		Action:   models.AuditActionAssign,
		Entity:   EntityCoordinatorAssignment,
		EntityID: targetID,
		Metadata: map[string]any{"species_group_id": groupID},
	})
	return assignment, nil
}

// UnassignCoordinator removes a coordinator/species-group link.
func (s *SpeciesGroupService) UnassignCoordinator(actorID, orgID, targetID string, groupID uint64) error {
	if err := s.groupRepo.Unassign(orgID, targetID, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSpeciesGroupNotFound
		}
		return fmt.Errorf("failed to unassign coordinator: %w", err)
	}

	s.audit.Record(AuditEntry{
		UserID:   actorID,
		OrgID:    orgID,
		Action:   models.AuditActionUnassign,
		Entity:   EntityCoordinatorAssignment,
		EntityID: targetID,
		Metadata: map[string]any{"species_group_id": groupID},
	})
	return nil
}

// normalizeSpecies trims, de-duplicates and drops empty species names.
func normalizeSpecies(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
