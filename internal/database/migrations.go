package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes beyond what AutoMigrate
// creates. Safe to re-run; existing indexes are skipped.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Audit queries filter by org plus action/entity/user and sort by time
		{"audit_logs", "idx_audit_logs_org_created_at", "org_id, created_at"},
		{"audit_logs", "idx_audit_logs_org_action", "org_id, action"},
		{"audit_logs", "idx_audit_logs_org_entity", "org_id, entity"},

		// Last-admin check counts admins per org
		{"org_members", "idx_org_members_org_role", "org_id, role"},

		// Coordinator scoping resolves assignments per member
		{"coordinator_assignments", "idx_coordinator_assignments_org_user", "org_id, user_id"},

		// Animal visibility filters
		{"animals", "idx_animals_org_species", "org_id, species"},
		{"animals", "idx_animals_org_carer", "org_id, carer_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}
		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
