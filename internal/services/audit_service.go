package services

import (
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"sync"

	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/repository"
	"github.com/quollhaven/wildlife-rehab-api/internal/utils"
)

// Entity names recorded in audit entries. Closed set; the query endpoint
// silently drops entity filters outside it.
const (
	EntityOrgMember             = "org_member"
	EntitySpeciesGroup          = "species_group"
	EntityCoordinatorAssignment = "coordinator_assignment"
	EntityAnimal                = "animal"
	EntityReminder              = "reminder"
	EntitySession               = "session"
)

var auditEntities = map[string]bool{
	EntityOrgMember:             true,
	EntitySpeciesGroup:          true,
	EntityCoordinatorAssignment: true,
	EntityAnimal:                true,
	EntityReminder:              true,
	EntitySession:               true,
}

var auditActions = map[models.AuditAction]bool{
	models.AuditActionCreate:     true,
	models.AuditActionUpdate:     true,
	models.AuditActionDelete:     true,
	models.AuditActionLogin:      true,
	models.AuditActionRoleChange: true,
	models.AuditActionAssign:     true,
	models.AuditActionUnassign:   true,
}

// auditSortFields maps accepted sort keys to columns. Anything else falls
// back to created_at descending.
var auditSortFields = map[string]string{
	"created_at": "created_at",
	"action":     "action",
	"entity":     "entity",
	"user_id":    "user_id",
}

var auditUserIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// AuditEntry is one action to record.
type AuditEntry struct {
	UserID   string
	OrgID    string
	Action   models.AuditAction
	Entity   string
	EntityID string
	Metadata map[string]any
}

// AuditService appends and queries the audit trail. Writes are
// best-effort and decoupled from the operation they describe: a failed
// audit write is logged and never surfaces to the caller.
type AuditService struct {
	auditRepo repository.AuditLogRepository
	wg        sync.WaitGroup
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo repository.AuditLogRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record appends one audit entry without blocking the caller. Persistence
// failures are logged internally only.
func (s *AuditService) Record(entry AuditEntry) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.record(entry); err != nil {
			log.Printf("audit write failed: action=%s entity=%s org=%s: %v",
				entry.Action, entry.Entity, entry.OrgID, err)
		}
	}()
}

func (s *AuditService) record(entry AuditEntry) error {
	metadata := ""
	if len(entry.Metadata) > 0 {
		data, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		metadata = string(data)
	}

	return s.auditRepo.Create(&models.AuditLog{
		UserID:   entry.UserID,
		OrgID:    entry.OrgID,
		Action:   entry.Action,
		Entity:   entry.Entity,
		EntityID: entry.EntityID,
		Metadata: metadata,
	})
}

// Wait blocks until all in-flight audit writes have finished. Called on
// shutdown and from tests.
func (s *AuditService) Wait() {
	s.wg.Wait()
}

// AuditQueryInput holds raw, unvalidated query parameters.
type AuditQueryInput struct {
	OrgID    string
	Action   string
	Entity   string
	UserID   string
	Sort     string
	Order    string
	Page     int
	PageSize int
}

// Query lists audit entries for an organization. Filter values that fail
// validation are dropped rather than rejected so partial or malformed
// filters still return results; unknown sort fields fall back to
// created_at descending.
func (s *AuditService) Query(input AuditQueryInput) ([]models.AuditLog, int64, error) {
	pagination := utils.NormalizePagination(input.Page, input.PageSize)

	filter := repository.AuditLogFilter{
		OrgID:    input.OrgID,
		Page:     pagination.Page,
		PageSize: pagination.Limit,
	}

	if action := models.AuditAction(input.Action); auditActions[action] {
		filter.Action = action
	}
	if auditEntities[input.Entity] {
		filter.Entity = input.Entity
	}
	if auditUserIDPattern.MatchString(input.UserID) {
		filter.UserID = input.UserID
	}

	if column, ok := auditSortFields[input.Sort]; ok {
		filter.SortField = column
		filter.SortDesc = input.Order == "desc"
	} else {
		filter.SortField = "created_at"
		filter.SortDesc = true
	}

	entries, total, err := s.auditRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit logs: %w", err)
	}
	return entries, total, nil
}
