package models

import (
	"time"

	"gorm.io/gorm"
)

type AnimalStatus string

const (
	AnimalStatusInCare   AnimalStatus = "in_care"
	AnimalStatusReleased AnimalStatus = "released"
	AnimalStatusDeceased AnimalStatus = "deceased"
)

// Animal is one animal in care, scoped to an organization. CarerID is the
// external user id of the assigned carer, if any.
type Animal struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	OrgID      string         `gorm:"type:varchar(64);not null;index" json:"org_id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	Species    string         `gorm:"type:varchar(255);not null;index" json:"species"`
	Status     AnimalStatus   `gorm:"type:varchar(20);not null;default:'in_care'" json:"status"`
	IntakeDate time.Time      `json:"intake_date"`
	Notes      string         `gorm:"type:text" json:"notes"`
	CarerID    *string        `gorm:"type:varchar(64);index" json:"carer_id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
