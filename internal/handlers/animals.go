package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quollhaven/wildlife-rehab-api/internal/dto"
	apierrors "github.com/quollhaven/wildlife-rehab-api/internal/errors"
	"github.com/quollhaven/wildlife-rehab-api/internal/middleware"
	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/services"
	"github.com/quollhaven/wildlife-rehab-api/internal/utils"
)

// AnimalHandler exposes animal record CRUD.
type AnimalHandler struct {
	animals *services.AnimalService
	triage  *services.TriageService
}

// NewAnimalHandler creates a new AnimalHandler. triage may be nil when no
// OpenAI key is configured.
func NewAnimalHandler(animals *services.AnimalService, triage *services.TriageService) *AnimalHandler {
	return &AnimalHandler{
		animals: animals,
		triage:  triage,
	}
}

// ListAnimals lists the animals visible to the caller.
func (h *AnimalHandler) ListAnimals(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	params := utils.GetPaginationParams(c)

	var status *models.AnimalStatus
	if raw := c.Query("status"); raw != "" {
		s := models.AnimalStatus(raw)
		switch s {
		case models.AnimalStatusInCare, models.AnimalStatusReleased, models.AnimalStatusDeceased:
			status = &s
		default:
			apierrors.BadRequest(c, "Invalid status")
			return
		}
	}

	animals, total, err := h.animals.ListAnimals(services.ListAnimalsInput{
		UserID:   userID,
		OrgID:    orgID,
		Status:   status,
		Page:     params.Page,
		PageSize: params.Limit,
	})
	if err != nil {
		respondAnimalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AnimalListResponse{
		Animals: dto.ToAnimalDTOs(animals),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetAnimal returns one animal within the caller's scope.
func (h *AnimalHandler) GetAnimal(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid animal ID")
		return
	}

	animal, err := h.animals.GetAnimal(userID, orgID, id)
	if err != nil {
		respondAnimalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAnimalDTO(*animal))
}

// CreateAnimal records a new intake.
func (h *AnimalHandler) CreateAnimal(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	type CreateAnimalRequest struct {
		Name       string     `json:"name" binding:"required"`
		Species    string     `json:"species" binding:"required"`
		Notes      string     `json:"notes"`
		IntakeDate *time.Time `json:"intake_date"`
		CarerID    *string    `json:"carer_id"`
	}

	var req CreateAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	animal, err := h.animals.CreateAnimal(services.CreateAnimalInput{
		UserID:     userID,
		OrgID:      orgID,
		Name:       req.Name,
		Species:    req.Species,
		Notes:      req.Notes,
		IntakeDate: req.IntakeDate,
		CarerID:    req.CarerID,
	})
	if err != nil {
		respondAnimalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAnimalDTO(*animal))
}

// UpdateAnimal updates an animal within the caller's scope.
func (h *AnimalHandler) UpdateAnimal(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid animal ID")
		return
	}

	type UpdateAnimalRequest struct {
		Name    *string              `json:"name"`
		Status  *models.AnimalStatus `json:"status"`
		Notes   *string              `json:"notes"`
		CarerID *string              `json:"carer_id"`
		// ClearCarer unassigns the current carer.
		ClearCarer bool `json:"clear_carer"`
	}

	var req UpdateAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	animal, err := h.animals.UpdateAnimal(services.UpdateAnimalInput{
		UserID:     userID,
		OrgID:      orgID,
		ID:         id,
		Name:       req.Name,
		Status:     req.Status,
		Notes:      req.Notes,
		CarerID:    req.CarerID,
		ClearCarer: req.ClearCarer,
	})
	if err != nil {
		respondAnimalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAnimalDTO(*animal))
}

// DeleteAnimal removes an animal record. Admin only.
func (h *AnimalHandler) DeleteAnimal(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid animal ID")
		return
	}

	if err := h.animals.DeleteAnimal(userID, orgID, id); err != nil {
		respondAnimalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Animal deleted successfully",
	})
}

// SuggestIntake extracts intake suggestions from a free-text rescue
// report.
func (h *AnimalHandler) SuggestIntake(c *gin.Context) {
	if h.triage == nil {
		apierrors.RespondWithError(c, http.StatusServiceUnavailable, "Triage service is not configured")
		return
	}

	type SuggestRequest struct {
		Report string `json:"report" binding:"required"`
	}

	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	suggestion, err := h.triage.SuggestIntake(c.Request.Context(), req.Report)
	if err != nil {
		apierrors.InternalError(c, "Failed to analyze report")
		return
	}

	c.JSON(http.StatusOK, suggestion)
}

func respondAnimalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c)
	case errors.Is(err, services.ErrAnimalNotFound):
		apierrors.NotFound(c, "Animal not found")
	case errors.Is(err, services.ErrAnimalNameRequired),
		errors.Is(err, services.ErrSpeciesRequired),
		errors.Is(err, services.ErrInvalidAnimalStatus),
		errors.Is(err, services.ErrCarerNotMember):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
