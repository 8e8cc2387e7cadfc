package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/quollhaven/wildlife-rehab-api/internal/constants"
	"github.com/quollhaven/wildlife-rehab-api/internal/dto"
	apierrors "github.com/quollhaven/wildlife-rehab-api/internal/errors"
	"github.com/quollhaven/wildlife-rehab-api/internal/identity"
	"github.com/quollhaven/wildlife-rehab-api/internal/middleware"
	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/services"
)

// AuthHandler exchanges identity-provider session tokens for API sessions.
type AuthHandler struct {
	directory identity.Client
	members   *services.MemberService
	audit     *services.AuditService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(directory identity.Client, members *services.MemberService, audit *services.AuditService) *AuthHandler {
	return &AuthHandler{
		directory: directory,
		members:   members,
		audit:     audit,
	}
}

// Login verifies a provider-issued session token and starts a session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Token string `json:"token" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, err := h.directory.VerifySessionToken(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			apierrors.Unauthorized(c, "")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, userID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	// Login entries are not scoped to an organization.
	h.audit.Record(services.AuditEntry{
		UserID: userID,
		Action: models.AuditActionLogin,
		Entity: services.EntitySession,
	})

	c.JSON(http.StatusOK, gin.H{"user_id": userID})
}

// Logout removes the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// Me returns the caller's user id and memberships.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	memberships, err := h.members.ListMemberships(userID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":     userID,
		"memberships": dto.ToMembershipDTOs(memberships),
	})
}
