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
	"github.com/quollhaven/wildlife-rehab-api/internal/services"
)

// ReminderHandler exposes care reminders nested under animals.
type ReminderHandler struct {
	reminders *services.ReminderService
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminders *services.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminders: reminders}
}

// CreateReminder attaches a reminder to an animal.
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	animalID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid animal ID")
		return
	}

	type CreateReminderRequest struct {
		Note  string    `json:"note" binding:"required"`
		DueAt time.Time `json:"due_at" binding:"required"`
	}

	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	reminder, err := h.reminders.CreateReminder(services.CreateReminderInput{
		UserID:   userID,
		OrgID:    orgID,
		AnimalID: animalID,
		Note:     req.Note,
		DueAt:    req.DueAt,
	})
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToReminderDTO(*reminder))
}

// ListReminders lists the reminders of an animal.
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	animalID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid animal ID")
		return
	}

	reminders, err := h.reminders.ListReminders(userID, orgID, animalID)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reminders": dto.ToReminderDTOs(reminders),
	})
}

// CompleteReminder marks a reminder done.
func (h *ReminderHandler) CompleteReminder(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	id, err := strconv.ParseUint(c.Param("reminder_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid reminder ID")
		return
	}

	reminder, err := h.reminders.CompleteReminder(userID, orgID, id)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToReminderDTO(*reminder))
}

// DeleteReminder removes a reminder.
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	id, err := strconv.ParseUint(c.Param("reminder_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid reminder ID")
		return
	}

	if err := h.reminders.DeleteReminder(userID, orgID, id); err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reminder deleted successfully",
	})
}

func respondReminderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c)
	case errors.Is(err, services.ErrReminderNotFound):
		apierrors.NotFound(c, "Reminder not found")
	case errors.Is(err, services.ErrAnimalNotFound):
		apierrors.NotFound(c, "Animal not found")
	case errors.Is(err, services.ErrReminderNoteRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
