package storage

import (
	"context"
	"database/sql"

	"github.com/ad/telegram-bolao-bot/internal/domain"
)

// WeeklyGuard records which participants already submitted a pick for a
// given week key. Rows live in SQLite with UNIQUE(week_key, user_id), so
// the once-per-week guarantee survives a process restart.
type WeeklyGuard struct {
	queue  *DBQueue
	logger domain.Logger
}

// NewWeeklyGuard creates a weekly submission guard backed by SQLite
func NewWeeklyGuard(queue *DBQueue, log domain.Logger) *WeeklyGuard {
	return &WeeklyGuard{
		queue:  queue,
		logger: log,
	}
}

// HasSubmitted reports whether the participant already has a pick
// recorded for the week key
func (g *WeeklyGuard) HasSubmitted(ctx context.Context, weekKey string, userID int64) (bool, error) {
	var count int
	err := g.queue.Execute(func(db *sql.DB) error {
		return db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM weekly_picks
			WHERE week_key = ? AND user_id = ?
		`, weekKey, userID).Scan(&count)
	})

	if err != nil {
		g.logger.Error("failed to check weekly guard", "week_key", weekKey, "user_id", userID, "error", err)
		return false, err
	}

	return count > 0, nil
}

// MarkSubmitted records a pick submission. Marking an already recorded
// (week_key, user_id) pair is a no-op; the set does not grow.
func (g *WeeklyGuard) MarkSubmitted(ctx context.Context, weekKey string, userID int64) error {
	err := g.queue.Execute(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO weekly_picks (week_key, user_id, created_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(week_key, user_id) DO NOTHING
		`, weekKey, userID)
		return err
	})

	if err != nil {
		g.logger.Error("failed to mark weekly submission", "week_key", weekKey, "user_id", userID, "error", err)
		return err
	}

	g.logger.Debug("weekly submission marked", "week_key", weekKey, "user_id", userID)
	return nil
}

// CountWeek returns how many participants submitted for the week key
func (g *WeeklyGuard) CountWeek(ctx context.Context, weekKey string) (int, error) {
	var count int
	err := g.queue.Execute(func(db *sql.DB) error {
		return db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM weekly_picks WHERE week_key = ?
		`, weekKey).Scan(&count)
	})

	if err != nil {
		g.logger.Error("failed to count weekly submissions", "week_key", weekKey, "error", err)
		return 0, err
	}

	return count, nil
}

// PruneBefore deletes guard rows for weeks older than oldestWeekKey.
// Week keys ("2026-W07") order lexicographically, including across year
// boundaries, so string comparison is enough.
func (g *WeeklyGuard) PruneBefore(ctx context.Context, oldestWeekKey string) error {
	var deletedCount int64
	err := g.queue.Execute(func(db *sql.DB) error {
		result, err := db.ExecContext(ctx, `
			DELETE FROM weekly_picks WHERE week_key < ?
		`, oldestWeekKey)
		if err != nil {
			return err
		}

		deletedCount, err = result.RowsAffected()
		return err
	})

	if err != nil {
		g.logger.Error("failed to prune weekly guard", "oldest_week_key", oldestWeekKey, "error", err)
		return err
	}

	if deletedCount > 0 {
		g.logger.Info("pruned weekly guard rows", "count", deletedCount, "oldest_week_key", oldestWeekKey)
	}

	return nil
}
