package dto

import (
	"time"

	"github.com/quollhaven/wildlife-rehab-api/internal/models"
)

// SpeciesGroupDTO represents a species group in API responses
type SpeciesGroupDTO struct {
	ID          uint64    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Species     []string  `json:"species"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CoordinatorAssignmentDTO represents a coordinator/species-group link
type CoordinatorAssignmentDTO struct {
	UserID         string `json:"user_id"`
	SpeciesGroupID uint64 `json:"species_group_id"`
}

// ToSpeciesGroupDTO converts a SpeciesGroup model to SpeciesGroupDTO
func ToSpeciesGroupDTO(group models.SpeciesGroup) SpeciesGroupDTO {
	species := group.SpeciesNames()
	if species == nil {
		species = []string{}
	}
	return SpeciesGroupDTO{
		ID:          group.ID,
		Slug:        group.Slug,
		Name:        group.Name,
		Description: group.Description,
		Species:     species,
		CreatedAt:   group.CreatedAt,
		UpdatedAt:   group.UpdatedAt,
	}
}

// ToSpeciesGroupDTOs converts species groups to DTOs
func ToSpeciesGroupDTOs(groups []models.SpeciesGroup) []SpeciesGroupDTO {
	dtos := make([]SpeciesGroupDTO, len(groups))
	for i, g := range groups {
		dtos[i] = ToSpeciesGroupDTO(g)
	}
	return dtos
}

// ToCoordinatorAssignmentDTO converts an assignment to DTO
func ToCoordinatorAssignmentDTO(a models.CoordinatorAssignment) CoordinatorAssignmentDTO {
	return CoordinatorAssignmentDTO{
		UserID:         a.UserID,
		SpeciesGroupID: a.SpeciesGroupID,
	}
}
