package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{serial}},
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		api_token TEXT NOT NULL UNIQUE,
		is_staff BOOLEAN NOT NULL DEFAULT {{false}},
		is_superuser BOOLEAN NOT NULL DEFAULT {{false}},
		created_at TIMESTAMP NOT NULL DEFAULT {{now}}
	)`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		full_name TEXT NOT NULL DEFAULT '',
		headline TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		location_city TEXT NOT NULL DEFAULT '',
		location_country TEXT NOT NULL DEFAULT '',
		preferred_locations TEXT NOT NULL DEFAULT '',
		work_authorization TEXT NOT NULL DEFAULT '',
		notice_period_days INTEGER,
		experience_years {{float}},
		target_roles TEXT NOT NULL DEFAULT '',
		target_companies TEXT NOT NULL DEFAULT '',
		salary_expectation_min INTEGER,
		salary_expectation_max INTEGER,
		remote_preference TEXT NOT NULL DEFAULT 'ANY',
		linkedin_url TEXT NOT NULL DEFAULT '',
		github_url TEXT NOT NULL DEFAULT '',
		portfolio_url TEXT NOT NULL DEFAULT '',
		timezone TEXT NOT NULL DEFAULT 'UTC',
		email_reminders_enabled BOOLEAN NOT NULL DEFAULT {{true}},
		daily_reminder_time TEXT NOT NULL DEFAULT '09:00',
		reminder_days_before INTEGER NOT NULL DEFAULT 0,
		ui_density TEXT NOT NULL DEFAULT 'COMFORTABLE',
		theme_preference TEXT NOT NULL DEFAULT 'SYSTEM',
		reduce_motion BOOLEAN NOT NULL DEFAULT {{false}},
		telegram_chat_id BIGINT,
		created_at TIMESTAMP NOT NULL DEFAULT {{now}},
		updated_at TIMESTAMP NOT NULL DEFAULT {{now}}
	)`,
	`CREATE TABLE IF NOT EXISTS job_leads (
		id {{serial}},
		owner_id BIGINT REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		company TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		work_mode TEXT NOT NULL DEFAULT 'UNKNOWN',
		source TEXT NOT NULL DEFAULT 'MANUAL',
		job_url TEXT NOT NULL DEFAULT '',
		jd_text TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		is_scam_suspected BOOLEAN NOT NULL DEFAULT {{false}},
		scam_reasons TEXT NOT NULL DEFAULT '',
		is_archived BOOLEAN NOT NULL DEFAULT {{false}},
		archived_at TIMESTAMP,
		discovered_at TIMESTAMP NOT NULL DEFAULT {{now}},
		created_at TIMESTAMP NOT NULL DEFAULT {{now}},
		updated_at TIMESTAMP NOT NULL DEFAULT {{now}}
	)`,
	`CREATE INDEX IF NOT EXISTS job_leads_owner_url_idx ON job_leads (owner_id, job_url)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id {{serial}},
		job_id BIGINT NOT NULL REFERENCES job_leads(id) ON DELETE CASCADE,
		owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'WISHLIST',
		next_action TEXT NOT NULL DEFAULT '',
		follow_up_at TIMESTAMP,
		applied_at TIMESTAMP,
		notes TEXT NOT NULL DEFAULT '',
		job_url TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		compensation_text TEXT NOT NULL DEFAULT '',
		location_text TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT {{now}},
		updated_at TIMESTAMP NOT NULL DEFAULT {{now}},
		UNIQUE (job_id, owner_id)
	)`,
	`CREATE INDEX IF NOT EXISTS applications_owner_follow_up_idx ON applications (owner_id, follow_up_at)`,
	`CREATE TABLE IF NOT EXISTS followups (
		id {{serial}},
		application_id BIGINT NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
		due_on DATE NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		is_completed BOOLEAN NOT NULL DEFAULT {{false}},
		completed_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT {{now}},
		updated_at TIMESTAMP NOT NULL DEFAULT {{now}}
	)`,
	`CREATE INDEX IF NOT EXISTS followups_due_on_idx ON followups (due_on, is_completed)`,
}

func (s *Store) schemaReplacer() *strings.Replacer {
	if s.driver == DriverSQLite {
		return strings.NewReplacer(
			"{{serial}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
			"{{float}}", "REAL",
			"{{true}}", "1",
			"{{false}}", "0",
			"{{now}}", "CURRENT_TIMESTAMP",
		)
	}
	return strings.NewReplacer(
		"{{serial}}", "BIGSERIAL PRIMARY KEY",
		"{{float}}", "DOUBLE PRECISION",
		"{{true}}", "TRUE",
		"{{false}}", "FALSE",
		"{{now}}", "NOW()",
	)
}

// Migrate creates missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	r := s.schemaReplacer()
	for _, stmt := range schema {
		if _, err := s.conn.ExecContext(ctx, r.Replace(stmt)); err != nil {
			s.logger.Error("failed to apply schema", zap.Error(err))
			return fmt.Errorf("migrate: %w", err)
		}
	}

	s.logger.Info("database schema is up to date")

	return nil
}
