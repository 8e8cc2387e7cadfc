package models

import "time"

type AuditAction string

const (
	AuditActionCreate     AuditAction = "CREATE"
	AuditActionUpdate     AuditAction = "UPDATE"
	AuditActionDelete     AuditAction = "DELETE"
	AuditActionLogin      AuditAction = "LOGIN"
	AuditActionRoleChange AuditAction = "ROLE_CHANGE"
	AuditActionAssign     AuditAction = "ASSIGN"
	AuditActionUnassign   AuditAction = "UNASSIGN"
)

// AuditLog is an immutable record of a state-changing action. Entries are
// append-only: nothing in this codebase updates or deletes them.
type AuditLog struct {
	ID        uint64      `gorm:"primarykey" json:"id"`
	UserID    string      `gorm:"type:varchar(64);not null;index" json:"user_id"`
	OrgID     string      `gorm:"type:varchar(64);not null;index" json:"org_id"`
	Action    AuditAction `gorm:"type:varchar(20);not null" json:"action"`
	Entity    string      `gorm:"type:varchar(50);not null" json:"entity"`
	EntityID  string      `gorm:"type:varchar(64)" json:"entity_id,omitempty"`
	Metadata  string      `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
