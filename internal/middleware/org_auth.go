package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/quollhaven/wildlife-rehab-api/internal/constants"
	apierrors "github.com/quollhaven/wildlife-rehab-api/internal/errors"
	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
	"github.com/quollhaven/wildlife-rehab-api/internal/services"
)

// RequireOrgMember resolves the :org_id path parameter and loads the
// caller's member record for that organization. The record is loaded
// fresh on every request; role changes apply immediately. Callers
// without a record get 403, which also hides whether the organization
// exists.
func RequireOrgMember(members *services.MemberService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("org_id")
		if orgID == "" {
			apierrors.BadRequest(c, "Invalid organization ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		member, err := members.GetMember(userID, orgID)
		if err != nil {
			if errors.Is(err, services.ErrMemberNotFound) {
				apierrors.Forbidden(c)
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyOrgID, orgID)
		c.Set(constants.ContextKeyMember, *member)
		c.Next()
	}
}

// RequirePermission checks the permission table against the member record
// loaded by RequireOrgMember.
func RequirePermission(action rbac.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := GetMember(c)
		if !ok {
			apierrors.Forbidden(c)
			c.Abort()
			return
		}

		if !rbac.HasPermission(member.Role, action) {
			apierrors.Forbidden(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireMinimumRole rejects members whose role ranks below min.
func RequireMinimumRole(min rbac.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := GetMember(c)
		if !ok || !member.Role.AtLeast(min) {
			apierrors.Forbidden(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetMember retrieves the member record loaded by RequireOrgMember.
func GetMember(c *gin.Context) (models.OrgMember, bool) {
	memberInterface, exists := c.Get(constants.ContextKeyMember)
	if !exists {
		return models.OrgMember{}, false
	}

	member, ok := memberInterface.(models.OrgMember)
	return member, ok
}

// GetOrgID retrieves the organization id resolved by RequireOrgMember.
func GetOrgID(c *gin.Context) (string, bool) {
	orgInterface, exists := c.Get(constants.ContextKeyOrgID)
	if !exists {
		return "", false
	}

	orgID, ok := orgInterface.(string)
	return orgID, ok
}
