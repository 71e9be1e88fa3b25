package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/repository"
)

var _ repository.AppRepository = (*DB)(nil)

const appColumns = `id, title, content, user_id, tags, created_at, updated_at`

// CreateApp inserts app and fills in its ID and timestamps.
func (db *DB) CreateApp(ctx context.Context, app *model.App) error {
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Tags == "" {
		app.Tags = "[]"
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO apps (title, content, user_id, tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		app.Title,
		app.Content,
		app.UserID,
		app.Tags,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating app: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new app id: %w", err)
	}
	app.ID = id

	return nil
}

// GetAppByID returns apperror.ErrNotFound when no row matches.
func (db *DB) GetAppByID(ctx context.Context, id int64) (*model.App, error) {
	var app model.App

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+appColumns+` FROM apps WHERE id = ?`,
		id,
	).Scan(
		&app.ID,
		&app.Title,
		&app.Content,
		&app.UserID,
		&app.Tags,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("app", id)
		}
		return nil, fmt.Errorf("sqlite: getting app %d: %w", id, err)
	}

	return &app, nil
}

// UpdateApp overwrites title, content and tags of an existing app.
// id, user_id and created_at are immutable.
func (db *DB) UpdateApp(ctx context.Context, app *model.App) error {
	app.UpdatedAt = time.Now()
	if app.Tags == "" {
		app.Tags = "[]"
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE apps
		 SET title = ?, content = ?, tags = ?, updated_at = ?
		 WHERE id = ?`,
		app.Title,
		app.Content,
		app.Tags,
		app.UpdatedAt,
		app.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating app %d: %w", app.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("app", app.ID)
	}

	return nil
}

// DeleteApp removes an app. Thumbs, favours and answers go with it
// through ON DELETE CASCADE.
func (db *DB) DeleteApp(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM apps WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting app %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("app", id)
	}

	return nil
}

// PageApps runs q and returns one page plus the total match count.
//
// Two statements are issued: COUNT(*) over the filter, then the page
// itself with LIMIT/OFFSET. They are not wrapped in a transaction, so the
// total can be off by concurrent writes between them.
func (db *DB) PageApps(ctx context.Context, q repository.AppQuery) (*model.Page[model.App], error) {
	current, size := normalizePage(q.Current, q.PageSize)
	where, args := buildAppWhere(q)

	var total int64
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM apps`+where, args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("sqlite: counting apps: %w", err)
	}

	page := &model.Page[model.App]{
		Current:  current,
		PageSize: size,
		Total:    total,
		Records:  make([]model.App, 0, size),
	}

	// Compare page numbers rather than offsets: (current-1)*size overflows
	// for huge page numbers.
	if total == 0 || current-1 >= (total+size-1)/size {
		return page, nil
	}
	offset := (current - 1) * size

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+appColumns+` FROM apps`+where+
			appOrderBy(q.SortField, q.SortOrder)+
			` LIMIT ? OFFSET ?`,
		append(args, size, offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing apps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a model.App
		if err := rows.Scan(
			&a.ID, &a.Title, &a.Content, &a.UserID, &a.Tags,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning app row: %w", err)
		}
		page.Records = append(page.Records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating apps: %w", err)
	}

	return page, nil
}
