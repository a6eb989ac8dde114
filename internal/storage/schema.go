package storage

import "database/sql"

const schema = `
CREATE TABLE IF NOT EXISTS signup_sessions (
    user_id INTEGER PRIMARY KEY,
    state TEXT NOT NULL,
    context_json TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS weekly_picks (
    week_key TEXT NOT NULL,
    user_id INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE(week_key, user_id)
);

CREATE INDEX IF NOT EXISTS idx_weekly_picks_week ON weekly_picks(week_key);
`

// InitSchema initializes the database schema
func InitSchema(queue *DBQueue) error {
	return queue.Execute(func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}
