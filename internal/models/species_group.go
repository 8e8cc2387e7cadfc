package models

import (
	"time"
)

// SpeciesGroup is an admin-defined named set of species, scoped to one
// organization and used to bound coordinator access. Groups are
// hard-deleted so a removed slug can be registered again; keeping
// deleted rows around would pin the slug through the unique index.
type SpeciesGroup struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	OrgID       string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_species_groups_org_slug" json:"org_id"`
	Slug        string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_species_groups_org_slug" json:"slug"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Species []SpeciesGroupEntry `gorm:"foreignKey:SpeciesGroupID" json:"species,omitempty"`
}

// SpeciesGroupEntry is one species name belonging to a species group.
type SpeciesGroupEntry struct {
	ID             uint64 `gorm:"primarykey" json:"-"`
	SpeciesGroupID uint64 `gorm:"not null;index" json:"-"`
	SpeciesName    string `gorm:"type:varchar(255);not null" json:"species_name"`
}

// SpeciesNames flattens the group's entries into plain strings.
func (g SpeciesGroup) SpeciesNames() []string {
	names := make([]string, len(g.Species))
	for i, e := range g.Species {
		names[i] = e.SpeciesName
	}
	return names
}
