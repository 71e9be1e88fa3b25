package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/repository"
)

// newMockDB wraps a sqlmock connection. Migrations are skipped; each test
// declares only the statements it expects.
func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &DB{conn: conn}, mock
}

func TestMock_DeleteApp_DriverError(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("disk I/O error")

	mock.ExpectExec(`DELETE FROM apps WHERE id = \?`).
		WithArgs(int64(3)).
		WillReturnError(boom)

	err := db.DeleteApp(context.Background(), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, apperror.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMock_UpdateApp_ZeroRowsIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE apps`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := db.UpdateApp(context.Background(), &model.App{ID: 8, Title: "t"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMock_PageApps_CountFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM apps WHERE user_id = \?`).
		WithArgs(int64(4)).
		WillReturnError(errors.New("database is locked"))

	_, err := db.PageApps(context.Background(), repository.AppQuery{UserID: 4})
	assert.ErrorContains(t, err, "counting apps")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMock_PageApps_BindsFiltersInOrder(t *testing.T) {
	db, mock := newMockDB(t)

	q := repository.AppQuery{
		SearchText: "go",
		Tags:       []string{"lang"},
		UserID:     2,
		SortField:  "createTime",
		SortOrder:  "ascend",
		Current:    1,
		PageSize:   5,
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM apps WHERE \(title LIKE`).
		WithArgs("%go%", "%go%", "lang", int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY created_at ASC, id ASC LIMIT \? OFFSET \?`).
		WithArgs("%go%", "%go%", "lang", int64(2), int64(5), int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "user_id", "tags", "created_at", "updated_at"}))

	page, err := db.PageApps(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMock_ListUsersByIDs_SingleQuery(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`FROM users WHERE id IN \(\?, \?, \?\)`).
		WithArgs(int64(1), int64(2), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "account", "password_hash", "github_id", "name", "email",
			"avatar_url", "profile", "role", "created_at", "updated_at",
		}))

	users, err := db.ListUsersByIDs(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}
