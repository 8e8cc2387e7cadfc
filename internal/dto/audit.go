package dto

import (
	"encoding/json"
	"time"

	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/utils"
)

// AuditLogDTO represents an audit log entry in API responses
type AuditLogDTO struct {
	ID        uint64             `json:"id"`
	UserID    string             `json:"user_id"`
	Action    models.AuditAction `json:"action"`
	Entity    string             `json:"entity"`
	EntityID  string             `json:"entity_id,omitempty"`
	Metadata  json.RawMessage    `json:"metadata,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// AuditLogListResponse represents a paginated list of audit log entries
type AuditLogListResponse struct {
	Entries    []AuditLogDTO            `json:"entries"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToAuditLogDTO converts an AuditLog model to AuditLogDTO
func ToAuditLogDTO(entry models.AuditLog) AuditLogDTO {
	dto := AuditLogDTO{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		CreatedAt: entry.CreatedAt,
	}
	if entry.Metadata != "" {
		dto.Metadata = json.RawMessage(entry.Metadata)
	}
	return dto
}

// ToAuditLogDTOs converts audit log entries to DTOs
func ToAuditLogDTOs(entries []models.AuditLog) []AuditLogDTO {
	dtos := make([]AuditLogDTO, len(entries))
	for i, e := range entries {
		dtos[i] = ToAuditLogDTO(e)
	}
	return dtos
}
