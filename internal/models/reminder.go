package models

import (
	"time"

	"gorm.io/gorm"
)

// Reminder is a care reminder attached to an animal. Delivery (SMS and the
// like) is handled outside this service; this record is the schedule.
type Reminder struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	OrgID     string         `gorm:"type:varchar(64);not null;index" json:"org_id"`
	AnimalID  uint64         `gorm:"not null;index" json:"animal_id"`
	UserID    string         `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Note      string         `gorm:"type:text;not null" json:"note"`
	DueAt     time.Time      `json:"due_at"`
	Done      bool           `gorm:"not null;default:false" json:"done"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Animal Animal `gorm:"foreignKey:AnimalID" json:"animal,omitempty"`
}
