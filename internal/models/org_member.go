package models

import (
	"time"

	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
)

// OrgMember is one user's role record within one organization. User and
// organization identifiers are issued by the external identity provider
// and are opaque here.
type OrgMember struct {
	OrgID     string    `gorm:"primarykey;type:varchar(64)" json:"org_id"`
	UserID    string    `gorm:"primarykey;type:varchar(64)" json:"user_id"`
	Role      rbac.Role `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
