package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'report_status') THEN
			CREATE TYPE report_status AS ENUM ('PENDING', 'COMPLETED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'waste_type') THEN
			CREATE TYPE waste_type AS ENUM ('DRY_WASTE', 'WET_WASTE', 'HAZARDOUS', 'GENERAL');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'report_severity') THEN
			CREATE TYPE report_severity AS ENUM ('NORMAL', 'HIGH', 'EMERGENCY');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'report_event') THEN
			CREATE TYPE report_event AS ENUM ('SUBMITTED', 'COMPLETED', 'ESCALATED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS waste_reports (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL,
		location TEXT NOT NULL,
		lat VARCHAR(32),
		lng VARCHAR(32),
		waste_type waste_type NOT NULL,
		severity report_severity NOT NULL,
		description TEXT,
		image TEXT NOT NULL,
		ai_verified BOOLEAN NOT NULL DEFAULT FALSE,
		ai_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		ai_detected_items TEXT,
		status report_status NOT NULL DEFAULT 'PENDING',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		resolved_at TIMESTAMPTZ,
		after_photo TEXT,
		completion_notes TEXT,
		escalated BOOLEAN NOT NULL DEFAULT FALSE,
		escalated_at TIMESTAMPTZ,
		escalation_reason TEXT,
		priority VARCHAR(16) NOT NULL DEFAULT 'normal',
		votes INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_waste_reports_status ON waste_reports (status);`,
	`CREATE INDEX IF NOT EXISTS idx_waste_reports_user_id ON waste_reports (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_waste_reports_created_at ON waste_reports (created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_waste_reports_pending_unescalated
		ON waste_reports (created_at)
		WHERE status = 'PENDING' AND escalated = FALSE;`,
	`CREATE TABLE IF NOT EXISTS report_status_log (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		report_id UUID NOT NULL REFERENCES waste_reports(id) ON DELETE CASCADE,
		event report_event NOT NULL,
		note TEXT,
		changed_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_report_status_log_report_id ON report_status_log (report_id);`,
	`CREATE INDEX IF NOT EXISTS idx_report_status_log_event ON report_status_log (event);`,
}

func runMigrations(database *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := database.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
