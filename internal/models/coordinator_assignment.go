package models

import "time"

// CoordinatorAssignment links a coordinator to a species group. OrgID is
// denormalized so every lookup stays scoped to one tenant.
type CoordinatorAssignment struct {
	OrgID          string    `gorm:"primarykey;type:varchar(64)" json:"org_id"`
	UserID         string    `gorm:"primarykey;type:varchar(64)" json:"user_id"`
	SpeciesGroupID uint64    `gorm:"primarykey" json:"species_group_id"`
	CreatedAt      time.Time `json:"created_at"`

	// Relations
	SpeciesGroup SpeciesGroup `gorm:"foreignKey:SpeciesGroupID" json:"species_group,omitempty"`
}
