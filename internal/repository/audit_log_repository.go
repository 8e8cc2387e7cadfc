package repository

import (
	"fmt"

	"github.com/quollhaven/wildlife-rehab-api/internal/database"
	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/utils"
	"gorm.io/gorm"
)

// GormAuditLogRepository is a GORM implementation of AuditLogRepository
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Create appends one audit log entry
func (r *GormAuditLogRepository) Create(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

// List retrieves entries for an organization with filtering and
// pagination. Filter values are validated by the caller; sort fields
// arrive already restricted to column names.
func (r *GormAuditLogRepository) List(filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := r.db.Model(&models.AuditLog{}).Scopes(database.TenantScope(filter.OrgID))

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Entity != "" {
		query = query.Where("entity = ?", filter.Entity)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	direction := "asc"
	if filter.SortDesc {
		direction = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", filter.SortField, direction))

	if filter.PageSize > 0 {
		query = query.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	var entries []models.AuditLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
