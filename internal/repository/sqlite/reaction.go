package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/repository"
)

var _ repository.ReactionRepository = (*DB)(nil)

// Thumbs and favours share one shape, so the SQL is written once and
// parameterised by table name. Table names come only from these constants.
const (
	thumbTable  = "app_thumbs"
	favourTable = "app_favours"
)

func (db *DB) HasThumb(ctx context.Context, appID, userID int64) (bool, error) {
	return db.hasReaction(ctx, thumbTable, appID, userID)
}

func (db *DB) HasFavour(ctx context.Context, appID, userID int64) (bool, error) {
	return db.hasReaction(ctx, favourTable, appID, userID)
}

func (db *DB) ThumbedAppIDs(ctx context.Context, userID int64, appIDs []int64) ([]int64, error) {
	return db.reactedAppIDs(ctx, thumbTable, userID, appIDs)
}

func (db *DB) FavouredAppIDs(ctx context.Context, userID int64, appIDs []int64) ([]int64, error) {
	return db.reactedAppIDs(ctx, favourTable, userID, appIDs)
}

func (db *DB) AddThumb(ctx context.Context, appID, userID int64) error {
	return db.addReaction(ctx, thumbTable, appID, userID)
}

func (db *DB) RemoveThumb(ctx context.Context, appID, userID int64) error {
	return db.removeReaction(ctx, thumbTable, appID, userID)
}

func (db *DB) AddFavour(ctx context.Context, appID, userID int64) error {
	return db.addReaction(ctx, favourTable, appID, userID)
}

func (db *DB) RemoveFavour(ctx context.Context, appID, userID int64) error {
	return db.removeReaction(ctx, favourTable, appID, userID)
}

func (db *DB) hasReaction(ctx context.Context, table string, appID, userID int64) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE app_id = ? AND user_id = ?)`,
		appID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking %s (app=%d user=%d): %w", table, appID, userID, err)
	}
	return exists, nil
}

func (db *DB) reactedAppIDs(ctx context.Context, table string, userID int64, appIDs []int64) ([]int64, error) {
	if len(appIDs) == 0 {
		return []int64{}, nil
	}

	in, args := inClause(appIDs)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT app_id FROM `+table+` WHERE user_id = ? AND app_id IN `+in,
		append([]any{userID}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s for user %d: %w", table, userID, err)
	}
	defer rows.Close()

	ids := make([]int64, 0, len(appIDs))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s row: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating %s: %w", table, err)
	}
	return ids, nil
}

// addReaction inserts the join row. A second insert for the same pair
// hits the unique index and is reported as a conflict.
func (db *DB) addReaction(ctx context.Context, table string, appID, userID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO `+table+` (app_id, user_id, created_at) VALUES (?, ?, ?)`,
		appID, userID, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(table, fmt.Sprintf("app %d user %d", appID, userID))
		}
		return fmt.Errorf("sqlite: inserting %s (app=%d user=%d): %w", table, appID, userID, err)
	}
	return nil
}

func (db *DB) removeReaction(ctx context.Context, table string, appID, userID int64) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE app_id = ? AND user_id = ?`,
		appID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting %s (app=%d user=%d): %w", table, appID, userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(table, fmt.Sprintf("app %d user %d", appID, userID))
	}
	return nil
}
