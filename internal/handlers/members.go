package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quollhaven/wildlife-rehab-api/internal/dto"
	apierrors "github.com/quollhaven/wildlife-rehab-api/internal/errors"
	"github.com/quollhaven/wildlife-rehab-api/internal/middleware"
	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
	"github.com/quollhaven/wildlife-rehab-api/internal/services"
)

// MemberHandler exposes provisioning and role management.
type MemberHandler struct {
	members *services.MemberService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(members *services.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

// Provision bootstraps the caller as the organization's first admin. The
// route carries only RequireAuth: the caller has no member record yet.
func (h *MemberHandler) Provision(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	orgID := c.Param("org_id")
	if orgID == "" {
		apierrors.BadRequest(c, "Invalid organization ID")
		return
	}

	member, err := h.members.ProvisionSelfAsAdmin(c.Request.Context(), userID, orgID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyProvisioned):
			apierrors.Conflict(c, "Organization already provisioned for this user")
		case errors.Is(err, services.ErrForbidden):
			apierrors.Forbidden(c)
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrgMemberDTO(*member))
}

// ListMemberships lists the caller's memberships across organizations.
func (h *MemberHandler) ListMemberships(c *gin.Context) {
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
		"memberships": dto.ToMembershipDTOs(memberships),
	})
}

// ListMembers lists all members of the organization. Admin only, gated by
// the route's RequirePermission(user:manage).
func (h *MemberHandler) ListMembers(c *gin.Context) {
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	members, err := h.members.ListMembers(orgID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": dto.ToOrgMemberDTOs(members),
	})
}

// AssignRole changes another member's role.
func (h *MemberHandler) AssignRole(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	targetID := c.Param("user_id")

	type AssignRoleRequest struct {
		Role string `json:"role" binding:"required"`
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	role, valid := rbac.ParseRole(req.Role)
	if !valid {
		apierrors.BadRequest(c, "Invalid role")
		return
	}

	member, err := h.members.AssignRole(c.Request.Context(), userID, orgID, targetID, role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfRoleChange):
			apierrors.Conflict(c, "Cannot change your own role")
		case errors.Is(err, services.ErrForbidden):
			apierrors.Forbidden(c)
		case errors.Is(err, services.ErrMemberNotFound):
			apierrors.NotFound(c, "Member not found")
		case errors.Is(err, services.ErrLastAdmin):
			apierrors.Conflict(c, "Cannot demote the last admin")
		case errors.Is(err, services.ErrInvalidRole):
			apierrors.BadRequest(c, "Invalid role")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToOrgMemberDTO(*member))
}
