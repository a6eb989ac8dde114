package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/ad/telegram-bolao-bot/internal/domain"
)

var (
	// ErrSessionNotFound is returned when a participant has no session
	ErrSessionNotFound = errors.New("session not found")
)

// SessionStorage persists one signup session per participant: the current
// conversation step plus the collected data as a JSON context map
type SessionStorage struct {
	queue  *DBQueue
	logger domain.Logger
}

// NewSessionStorage creates a session storage backed by SQLite
func NewSessionStorage(queue *DBQueue, log domain.Logger) *SessionStorage {
	return &SessionStorage{
		queue:  queue,
		logger: log,
	}
}

// Get retrieves the step and context for a participant
func (s *SessionStorage) Get(ctx context.Context, userID int64) (step domain.Step, data map[string]interface{}, err error) {
	var stateStr string
	var contextJSON string
	var updatedAt time.Time

	err = s.queue.Execute(func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, `
			SELECT state, context_json, updated_at
			FROM signup_sessions
			WHERE user_id = ?
		`, userID)

		return row.Scan(&stateStr, &contextJSON, &updatedAt)
	})

	if err != nil {
		if err == sql.ErrNoRows {
			s.logger.Debug("session not found", "user_id", userID)
			return "", nil, ErrSessionNotFound
		}
		s.logger.Error("failed to get session", "user_id", userID, "error", err)
		return "", nil, err
	}

	if err := json.Unmarshal([]byte(contextJSON), &data); err != nil {
		s.logger.Error("failed to unmarshal session context", "user_id", userID, "error", err)
		// Corrupted sessions are unrecoverable; drop them
		_ = s.Delete(ctx, userID)
		return "", nil, err
	}

	s.logger.Debug("session retrieved", "user_id", userID, "step", stateStr)
	return domain.Step(stateStr), data, nil
}

// Set stores the step and context for a participant, creating the session
// on first contact
func (s *SessionStorage) Set(ctx context.Context, userID int64, step domain.Step, data map[string]interface{}) error {
	contextJSON, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("failed to marshal session context", "user_id", userID, "error", err)
		return err
	}

	err = s.queue.Execute(func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO signup_sessions (user_id, state, context_json, created_at, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			ON CONFLICT(user_id) DO UPDATE SET
				state = excluded.state,
				context_json = excluded.context_json,
				updated_at = CURRENT_TIMESTAMP
		`, userID, string(step), string(contextJSON))

		if err != nil {
			return err
		}

		return tx.Commit()
	})

	if err != nil {
		s.logger.Error("failed to set session", "user_id", userID, "step", step, "error", err)
		return err
	}

	s.logger.Debug("session stored", "user_id", userID, "step", step)
	return nil
}

// Delete removes the session for a participant
func (s *SessionStorage) Delete(ctx context.Context, userID int64) error {
	err := s.queue.Execute(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			DELETE FROM signup_sessions WHERE user_id = ?
		`, userID)
		return err
	})

	if err != nil {
		s.logger.Error("failed to delete session", "user_id", userID, "error", err)
		return err
	}

	s.logger.Debug("session deleted", "user_id", userID)
	return nil
}

// CleanupStale removes sessions inactive for more than 24 hours. A
// participant whose session was cleaned up simply starts over on next
// contact.
func (s *SessionStorage) CleanupStale(ctx context.Context) error {
	var deletedCount int64
	err := s.queue.Execute(func(db *sql.DB) error {
		result, err := db.ExecContext(ctx, `
			DELETE FROM signup_sessions
			WHERE updated_at < datetime('now', '-24 hours')
		`)
		if err != nil {
			return err
		}

		deletedCount, err = result.RowsAffected()
		return err
	})

	if err != nil {
		s.logger.Error("failed to cleanup stale sessions", "error", err)
		return err
	}

	if deletedCount > 0 {
		s.logger.Info("cleaned up stale sessions", "count", deletedCount)
	}

	return nil
}
