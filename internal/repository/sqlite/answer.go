package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/repository"
)

var _ repository.AnswerRepository = (*DB)(nil)

// CreateAnswer stores one answer row and fills in its ID.
func (db *DB) CreateAnswer(ctx context.Context, answer *model.UserAnswer) error {
	answer.CreatedAt = time.Now()
	if answer.Choices == "" {
		answer.Choices = "[]"
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_answers (app_id, user_id, choices, result_name, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		answer.AppID,
		answer.UserID,
		answer.Choices,
		answer.ResultName,
		answer.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating answer for app %d: %w", answer.AppID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new answer id: %w", err)
	}
	answer.ID = id
	return nil
}

// AppAnswerCounts ranks apps by number of recorded answers.
func (db *DB) AppAnswerCounts(ctx context.Context, limit int) ([]model.AppAnswerCount, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT app_id, COUNT(*) AS answer_count
		 FROM user_answers
		 GROUP BY app_id
		 ORDER BY answer_count DESC, app_id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting answers per app: %w", err)
	}
	defer rows.Close()

	counts := make([]model.AppAnswerCount, 0, limit)
	for rows.Next() {
		var c model.AppAnswerCount
		if err := rows.Scan(&c.AppID, &c.AnswerCount); err != nil {
			return nil, fmt.Errorf("sqlite: scanning answer count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating answer counts: %w", err)
	}
	return counts, nil
}

// AppAnswerResultCounts groups one app's answers by result name.
func (db *DB) AppAnswerResultCounts(ctx context.Context, appID int64) ([]model.AppAnswerResultCount, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT result_name, COUNT(*) AS result_count
		 FROM user_answers
		 WHERE app_id = ?
		 GROUP BY result_name
		 ORDER BY result_count DESC, result_name ASC`,
		appID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting results for app %d: %w", appID, err)
	}
	defer rows.Close()

	counts := []model.AppAnswerResultCount{}
	for rows.Next() {
		var c model.AppAnswerResultCount
		if err := rows.Scan(&c.ResultName, &c.ResultCount); err != nil {
			return nil, fmt.Errorf("sqlite: scanning result count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating result counts: %w", err)
	}
	return counts, nil
}
