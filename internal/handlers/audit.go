package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quollhaven/wildlife-rehab-api/internal/dto"
	apierrors "github.com/quollhaven/wildlife-rehab-api/internal/errors"
	"github.com/quollhaven/wildlife-rehab-api/internal/middleware"
	"github.com/quollhaven/wildlife-rehab-api/internal/services"
	"github.com/quollhaven/wildlife-rehab-api/internal/utils"
)

// AuditHandler exposes the audit trail to administrators.
type AuditHandler struct {
	audit *services.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// ListAuditLogs lists audit entries for the organization. Filter values
// that fail validation are ignored; unknown sort fields fall back to
// created_at descending.
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		apierrors.Forbidden(c)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	entries, total, err := h.audit.Query(services.AuditQueryInput{
		OrgID:    orgID,
		Action:   c.Query("action"),
		Entity:   c.Query("entity"),
		UserID:   c.Query("user_id"),
		Sort:     c.Query("sort"),
		Order:    c.Query("order"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	pagination := utils.NormalizePagination(page, pageSize)
	c.JSON(http.StatusOK, dto.AuditLogListResponse{
		Entries: dto.ToAuditLogDTOs(entries),
		Pagination: utils.PaginationResponse{
			Page:  pagination.Page,
			Limit: pagination.Limit,
			Total: total,
		},
	})
}
