package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quollhaven/wildlife-rehab-api/internal/dto"
	apierrors "github.com/quollhaven/wildlife-rehab-api/internal/errors"
	"github.com/quollhaven/wildlife-rehab-api/internal/middleware"
	"github.com/quollhaven/wildlife-rehab-api/internal/services"
)

// SpeciesGroupHandler exposes species group CRUD and coordinator
// assignment.
type SpeciesGroupHandler struct {
	groups *services.SpeciesGroupService
}

// NewSpeciesGroupHandler creates a new SpeciesGroupHandler.
func NewSpeciesGroupHandler(groups *services.SpeciesGroupService) *SpeciesGroupHandler {
	return &SpeciesGroupHandler{groups: groups}
}

// ListGroups lists the organization's species groups. Open to any member.
func (h *SpeciesGroupHandler) ListGroups(c *gin.Context) {
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	groups, err := h.groups.ListGroups(orgID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"species_groups": dto.ToSpeciesGroupDTOs(groups),
	})
}

// CreateGroup creates a species group.
func (h *SpeciesGroupHandler) CreateGroup(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	type CreateGroupRequest struct {
		Slug        string   `json:"slug" binding:"required"`
		Name        string   `json:"name" binding:"required"`
		Description string   `json:"description"`
		Species     []string `json:"species" binding:"required"`
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, err := h.groups.CreateGroup(services.CreateGroupInput{
		OrgID:       orgID,
		ActorID:     userID,
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Species:     req.Species,
	})
	if err != nil {
		respondSpeciesGroupError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSpeciesGroupDTO(*group))
}

// UpdateGroup updates a species group's fields and species list.
func (h *SpeciesGroupHandler) UpdateGroup(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	groupID, err := strconv.ParseUint(c.Param("group_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid species group ID")
		return
	}

	type UpdateGroupRequest struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Species     []string `json:"species"`
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, err := h.groups.UpdateGroup(services.UpdateGroupInput{
		OrgID:       orgID,
		ActorID:     userID,
		ID:          groupID,
		Name:        req.Name,
		Description: req.Description,
		Species:     req.Species,
	})
	if err != nil {
		respondSpeciesGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSpeciesGroupDTO(*group))
}

// DeleteGroup removes a species group.
func (h *SpeciesGroupHandler) DeleteGroup(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	groupID, err := strconv.ParseUint(c.Param("group_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid species group ID")
		return
	}

	if err := h.groups.DeleteGroup(userID, groupID, orgID); err != nil {
		respondSpeciesGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Species group deleted successfully",
	})
}

// AssignCoordinator links a coordinator to a species group.
func (h *SpeciesGroupHandler) AssignCoordinator(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	targetID := c.Param("user_id")
	groupID, err := strconv.ParseUint(c.Param("group_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid species group ID")
		return
	}

	assignment, err := h.groups.AssignCoordinator(userID, orgID, targetID, groupID)
	if err != nil {
		respondSpeciesGroupError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCoordinatorAssignmentDTO(*assignment))
}

// UnassignCoordinator removes a coordinator/species-group link.
func (h *SpeciesGroupHandler) UnassignCoordinator(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	targetID := c.Param("user_id")
	groupID, err := strconv.ParseUint(c.Param("group_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid species group ID")
		return
	}

	if err := h.groups.UnassignCoordinator(userID, orgID, targetID, groupID); err != nil {
		respondSpeciesGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coordinator unassigned successfully",
	})
}

func respondSpeciesGroupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSpeciesGroupNotFound):
		apierrors.NotFound(c, "Species group not found")
	case errors.Is(err, services.ErrMemberNotFound):
		apierrors.NotFound(c, "Member not found")
	case errors.Is(err, services.ErrDuplicateSlug):
		apierrors.Conflict(c, "A species group with this slug already exists")
	case errors.Is(err, services.ErrAlreadyAssigned):
		apierrors.Conflict(c, "Coordinator is already assigned to this species group")
	case errors.Is(err, services.ErrNoSpecies),
		errors.Is(err, services.ErrTooManySpecies),
		errors.Is(err, services.ErrInvalidSlug),
		errors.Is(err, services.ErrNotCoordinator):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
