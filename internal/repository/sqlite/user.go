package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, account, password_hash, github_id, name, email, avatar_url, profile, role, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u        model.User
		githubID sql.NullInt64
	)
	if err := s.Scan(
		&u.ID,
		&u.Account,
		&u.PasswordHash,
		&githubID,
		&u.Name,
		&u.Email,
		&u.AvatarURL,
		&u.Profile,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.GitHubID = githubID.Int64
	return &u, nil
}

// nullableGitHubID maps the zero value to NULL so password accounts do not
// collide on the UNIQUE github_id index.
func nullableGitHubID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// CreateUser inserts a new account. A duplicate account name returns
// apperror.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (account, password_hash, github_id, name, email, avatar_url, profile, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Account,
		user.PasswordHash,
		nullableGitHubID(user.GitHubID),
		user.Name,
		user.Email,
		user.AvatarURL,
		user.Profile,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Account)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Account, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id

	return nil
}

// Upsert inserts or updates a user keyed by GitHub ID.
//
// An existing row keeps its ID, account and role; only the profile fields
// GitHub owns (name, email, avatar) are refreshed. On return user holds
// the canonical stored record.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	if user.GitHubID == 0 {
		return fmt.Errorf("sqlite: upsert requires a GitHub ID")
	}

	existing, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_id = ?`, user.GitHubID,
	))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existing == nil {
		return db.CreateUser(ctx, user)
	}

	existing.Name = user.Name
	existing.Email = user.Email
	existing.AvatarURL = user.AvatarURL
	existing.UpdatedAt = time.Now()

	_, err = db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, avatar_url = ?, updated_at = ?
		 WHERE id = ?`,
		existing.Name,
		existing.Email,
		existing.AvatarURL,
		existing.UpdatedAt,
		existing.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %d: %w", existing.ID, err)
	}

	*user = *existing
	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return u, nil
}

// GetUserByAccount looks a user up by login account name.
func (db *DB) GetUserByAccount(ctx context.Context, account string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE account = ?`, account,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", account)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", account, err)
	}
	return u, nil
}

// ListUsersByIDs loads all users in ids with a single IN query.
func (db *DB) ListUsersByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}

	in, args := inClause(ids)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN `+in, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users by ids: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
// The driver's error text is stable ("UNIQUE constraint failed: ...").
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
