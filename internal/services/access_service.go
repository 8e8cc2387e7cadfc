package services

import (
	"errors"
	"fmt"

	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
	"github.com/quollhaven/wildlife-rehab-api/internal/repository"
	"gorm.io/gorm"
)

// AccessService decides whether a user may act on an animal. Decisions
// are recomputed from persisted state on every call so role and
// assignment changes apply to in-flight requests immediately.
type AccessService struct {
	memberRepo repository.OrgMemberRepository
	groupRepo  repository.SpeciesGroupRepository
}

// NewAccessService creates a new AccessService.
func NewAccessService(memberRepo repository.OrgMemberRepository, groupRepo repository.SpeciesGroupRepository) *AccessService {
	return &AccessService{
		memberRepo: memberRepo,
		groupRepo:  groupRepo,
	}
}

// CanAccessAnimal reports whether the user may read or write the animal.
// Admins and the _all roles see everything at their level; coordinators
// are bounded by their assigned species groups; carers by direct
// assignment. Users without a member record are denied.
func (s *AccessService) CanAccessAnimal(userID, orgID string, animal *models.Animal) (bool, error) {
	member, err := s.memberRepo.Find(orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to find member: %w", err)
	}

	switch member.Role {
	case rbac.RoleAdmin, rbac.RoleCoordinatorAll, rbac.RoleCarerAll:
		return true, nil
	case rbac.RoleCoordinator:
		species, err := s.VisibleSpecies(userID, orgID)
		if err != nil {
			return false, err
		}
		return species[animal.Species], nil
	case rbac.RoleCarer:
		return animal.CarerID != nil && *animal.CarerID == userID, nil
	default:
		// Unrecognized role: deny.
		return false, nil
	}
}

// VisibleSpecies returns the union of species names across the species
// groups assigned to the user.
func (s *AccessService) VisibleSpecies(userID, orgID string) (map[string]bool, error) {
	groups, err := s.groupRepo.ListAssignedGroups(orgID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned groups: %w", err)
	}

	species := make(map[string]bool)
	for _, g := range groups {
		for _, name := range g.SpeciesNames() {
			species[name] = true
		}
	}
	return species, nil
}
