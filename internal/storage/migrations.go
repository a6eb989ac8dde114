package storage

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// migrations contains all database migrations in order
var migrations = []Migration{
	{
		Version:     1,
		Description: "Index signup_sessions on updated_at for stale-session cleanup",
		SQL: `
CREATE INDEX IF NOT EXISTS idx_signup_sessions_updated ON signup_sessions(updated_at);
`,
	},
	{
		Version:     2,
		Description: "Index weekly_picks on created_at for retention pruning",
		SQL: `
CREATE INDEX IF NOT EXISTS idx_weekly_picks_created ON weekly_picks(created_at);
`,
	},
}

// RunMigrations applies any migrations not yet recorded in
// schema_migrations, each inside its own transaction
func RunMigrations(queue *DBQueue) error {
	return queue.Execute(func(db *sql.DB) error {
		_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    description TEXT NOT NULL,
    applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`)
		if err != nil {
			return fmt.Errorf("failed to create schema_migrations table: %w", err)
		}

		for _, migration := range migrations {
			var count int
			err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", migration.Version).Scan(&count)
			if err != nil {
				return fmt.Errorf("failed to check migration %d: %w", migration.Version, err)
			}
			if count > 0 {
				continue
			}

			tx, err := db.Begin()
			if err != nil {
				return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
			}

			if _, err := tx.Exec(migration.SQL); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to execute migration %d (%s): %w", migration.Version, migration.Description, err)
			}

			_, err = tx.Exec(
				"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
				migration.Version,
				migration.Description,
			)
			if err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
			}

			if err := tx.Commit(); err != nil {
				return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
			}
		}

		return nil
	})
}
