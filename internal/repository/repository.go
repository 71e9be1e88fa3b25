// Package repository declares the storage contracts the services depend on.
// The sqlite subpackage implements all of them on one *sqlite.DB.
package repository

import (
	"context"

	"github.com/sakif/wisdom-share/internal/model"
)

// AppQuery is the storage-level form of an app list request. Zero values
// mean "no filter". Sort fields are checked against a whitelist by the
// implementation; anything else is ignored.
type AppQuery struct {
	ID           int64
	NotID        int64
	Title        string
	Content      string
	SearchText   string
	Tags         []string
	UserID       int64
	FavourUserID int64

	SortField string
	SortOrder string

	Current  int64
	PageSize int64
}

type AppRepository interface {
	CreateApp(ctx context.Context, app *model.App) error
	GetAppByID(ctx context.Context, id int64) (*model.App, error)
	UpdateApp(ctx context.Context, app *model.App) error
	DeleteApp(ctx context.Context, id int64) error
	PageApps(ctx context.Context, q AppQuery) (*model.Page[model.App], error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByAccount(ctx context.Context, account string) (*model.User, error)
	// ListUsersByIDs loads every user in ids with one query. Missing ids
	// are simply absent from the result.
	ListUsersByIDs(ctx context.Context, ids []int64) ([]model.User, error)
}

// ReactionRepository stores thumb and favour join rows.
type ReactionRepository interface {
	HasThumb(ctx context.Context, appID, userID int64) (bool, error)
	HasFavour(ctx context.Context, appID, userID int64) (bool, error)
	// ThumbedAppIDs returns the subset of appIDs the user has liked.
	ThumbedAppIDs(ctx context.Context, userID int64, appIDs []int64) ([]int64, error)
	// FavouredAppIDs returns the subset of appIDs the user has bookmarked.
	FavouredAppIDs(ctx context.Context, userID int64, appIDs []int64) ([]int64, error)
	AddThumb(ctx context.Context, appID, userID int64) error
	RemoveThumb(ctx context.Context, appID, userID int64) error
	AddFavour(ctx context.Context, appID, userID int64) error
	RemoveFavour(ctx context.Context, appID, userID int64) error
}

// AnswerRepository stores user answers and aggregates them.
type AnswerRepository interface {
	CreateAnswer(ctx context.Context, answer *model.UserAnswer) error
	// AppAnswerCounts returns the apps with the most answers, at most limit rows.
	AppAnswerCounts(ctx context.Context, limit int) ([]model.AppAnswerCount, error)
	AppAnswerResultCounts(ctx context.Context, appID int64) ([]model.AppAnswerResultCount, error)
}
