// Package service holds the business rules. Handlers pass in the caller
// explicitly (nil for anonymous requests); services never look at HTTP
// state. Storage goes through the interfaces in internal/repository.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/auth"
	"github.com/sakif/wisdom-share/internal/metrics"
	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/repository"
)

const (
	MaxTitleLength = 80
	// MaxVOPageSize caps the public, enriched list endpoints.
	MaxVOPageSize = 20
)

type AppService struct {
	apps      repository.AppRepository
	users     repository.UserRepository
	reactions repository.ReactionRepository
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewAppService(
	apps repository.AppRepository,
	users repository.UserRepository,
	reactions repository.ReactionRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AppService {
	return &AppService{
		apps:      apps,
		users:     users,
		reactions: reactions,
		metrics:   m,
		logger:    logger,
	}
}

// ValidateApp checks the fields of app that are about to be written. On
// create the title is required; on any write a title longer than
// MaxTitleLength characters is rejected.
func ValidateApp(app *model.App, isCreate bool) error {
	if app == nil {
		return apperror.ValidationFailed("app", "app is required")
	}
	title := strings.TrimSpace(app.Title)
	if isCreate && title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if title != "" && utf8.RuneCountInString(app.Title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	return nil
}

// Add creates an app owned by caller and returns its id.
func (s *AppService) Add(ctx context.Context, caller *model.User, req model.AppAddRequest) (int64, error) {
	if err := auth.Authorize(caller, nil, auth.ActionCreate); err != nil {
		return 0, err
	}

	app := &model.App{
		Title:   req.Title,
		Content: req.Content,
		Tags:    model.EncodeTags(req.Tags),
		UserID:  caller.ID,
	}
	if err := ValidateApp(app, true); err != nil {
		return 0, err
	}

	if err := s.apps.CreateApp(ctx, app); err != nil {
		return 0, fmt.Errorf("service: creating app: %w", err)
	}

	s.metrics.AppWrite("add")
	s.logger.Info("app created",
		slog.Int64("appID", app.ID),
		slog.Int64("userID", caller.ID),
	)
	return app.ID, nil
}

// Delete removes an app. Only its owner or an admin may do so.
func (s *AppService) Delete(ctx context.Context, caller *model.User, id int64) error {
	if caller == nil {
		return apperror.Unauthorized("not logged in")
	}
	if id <= 0 {
		return apperror.ValidationFailed("id", "id must be positive")
	}

	old, err := s.apps.GetAppByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.Authorize(caller, old, auth.ActionDelete); err != nil {
		return err
	}

	if err := s.apps.DeleteApp(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.OperationFailed("app was removed concurrently")
		}
		return fmt.Errorf("service: deleting app %d: %w", id, err)
	}

	s.metrics.AppWrite("delete")
	s.logger.Info("app deleted",
		slog.Int64("appID", id),
		slog.Int64("userID", caller.ID),
	)
	return nil
}

// Update is the admin-only full update.
func (s *AppService) Update(ctx context.Context, caller *model.User, req model.AppUpdateRequest) error {
	return s.modify(ctx, caller, req.ID, req.Title, req.Content, req.Tags, auth.ActionUpdate, "update")
}

// Edit is the owner-or-admin partial update.
func (s *AppService) Edit(ctx context.Context, caller *model.User, req model.AppEditRequest) error {
	return s.modify(ctx, caller, req.ID, req.Title, req.Content, req.Tags, auth.ActionEdit, "edit")
}

// modify applies the provided fields to an existing app. Nil fields keep
// their stored value; a non-nil empty tags slice clears the tags.
func (s *AppService) modify(
	ctx context.Context,
	caller *model.User,
	id int64,
	title, content *string,
	tags []string,
	action auth.Action,
	op string,
) error {
	if caller == nil {
		return apperror.Unauthorized("not logged in")
	}
	if id <= 0 {
		return apperror.ValidationFailed("id", "id must be positive")
	}
	// Parameter errors win over existence and ownership.
	if title != nil {
		if err := ValidateApp(&model.App{Title: *title}, false); err != nil {
			return err
		}
	}

	old, err := s.apps.GetAppByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.Authorize(caller, old, action); err != nil {
		return err
	}

	updated := *old
	if title != nil {
		updated.Title = *title
	}
	if content != nil {
		updated.Content = *content
	}
	if tags != nil {
		updated.Tags = model.EncodeTags(tags)
	}
	if err := ValidateApp(&updated, false); err != nil {
		return err
	}

	if err := s.apps.UpdateApp(ctx, &updated); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.OperationFailed("app was removed concurrently")
		}
		return fmt.Errorf("service: updating app %d: %w", id, err)
	}

	s.metrics.AppWrite(op)
	s.logger.Info("app modified",
		slog.String("op", op),
		slog.Int64("appID", id),
		slog.Int64("userID", caller.ID),
	)
	return nil
}

// GetAppVO loads one app and enriches it for caller.
func (s *AppService) GetAppVO(ctx context.Context, caller *model.User, id int64) (*model.AppVO, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("id", "id must be positive")
	}
	app, err := s.apps.GetAppByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(caller, app, auth.ActionRead); err != nil {
		return nil, err
	}
	return s.ToAppVO(ctx, caller, app), nil
}

// ToAppVO enriches a single app: owner view plus, for a logged-in caller,
// whether they liked and bookmarked it. Failed lookups leave the defaults.
func (s *AppService) ToAppVO(ctx context.Context, caller *model.User, app *model.App) *model.AppVO {
	vo := model.NewAppVO(app)

	owner, err := s.users.GetUserByID(ctx, app.UserID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Warn("loading app owner", slog.Int64("appID", app.ID), slog.String("error", err.Error()))
		}
	} else {
		vo.User = model.NewUserVO(owner)
	}

	if caller == nil {
		return vo
	}
	if vo.HasThumb, err = s.reactions.HasThumb(ctx, app.ID, caller.ID); err != nil {
		s.logger.Warn("loading thumb state", slog.Int64("appID", app.ID), slog.String("error", err.Error()))
	}
	if vo.HasFavour, err = s.reactions.HasFavour(ctx, app.ID, caller.ID); err != nil {
		s.logger.Warn("loading favour state", slog.Int64("appID", app.ID), slog.String("error", err.Error()))
	}
	return vo
}

// GetAppVOPage enriches a whole page with one owner lookup and, for a
// logged-in caller, one thumb and one favour lookup. Page metadata is
// carried over unchanged.
func (s *AppService) GetAppVOPage(ctx context.Context, caller *model.User, page *model.Page[model.App]) *model.Page[model.AppVO] {
	out := model.MapPage(page, func(a model.App) model.AppVO {
		return *model.NewAppVO(&a)
	})
	if len(page.Records) == 0 {
		return out
	}

	ownerIDs := make([]int64, 0, len(page.Records))
	appIDs := make([]int64, 0, len(page.Records))
	seenOwner := make(map[int64]bool)
	for _, a := range page.Records {
		appIDs = append(appIDs, a.ID)
		if !seenOwner[a.UserID] {
			seenOwner[a.UserID] = true
			ownerIDs = append(ownerIDs, a.UserID)
		}
	}

	owners := make(map[int64]*model.UserVO, len(ownerIDs))
	users, err := s.users.ListUsersByIDs(ctx, ownerIDs)
	if err != nil {
		s.logger.Warn("loading app owners", slog.String("error", err.Error()))
	}
	for i := range users {
		owners[users[i].ID] = model.NewUserVO(&users[i])
	}

	var thumbed, favoured map[int64]bool
	if caller != nil {
		thumbed = s.lookupSet(ctx, "thumb", caller.ID, appIDs, s.reactions.ThumbedAppIDs)
		favoured = s.lookupSet(ctx, "favour", caller.ID, appIDs, s.reactions.FavouredAppIDs)
	}

	for i := range out.Records {
		vo := &out.Records[i]
		vo.User = owners[vo.UserID]
		vo.HasThumb = thumbed[vo.ID]
		vo.HasFavour = favoured[vo.ID]
	}
	return out
}

func (s *AppService) lookupSet(
	ctx context.Context,
	kind string,
	userID int64,
	appIDs []int64,
	fetch func(context.Context, int64, []int64) ([]int64, error),
) map[int64]bool {
	ids, err := fetch(ctx, userID, appIDs)
	if err != nil {
		s.logger.Warn("loading "+kind+" state", slog.String("error", err.Error()))
		return nil
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// ListPage is the admin listing of raw records.
func (s *AppService) ListPage(ctx context.Context, caller *model.User, req model.AppQueryRequest) (*model.Page[model.App], error) {
	if err := auth.Authorize(caller, nil, auth.ActionListAll); err != nil {
		return nil, err
	}
	page, err := s.apps.PageApps(ctx, toAppQuery(req))
	if err != nil {
		return nil, fmt.Errorf("service: listing apps: %w", err)
	}
	return page, nil
}

// ListVOPage is the public enriched listing. Page size is capped at
// MaxVOPageSize.
func (s *AppService) ListVOPage(ctx context.Context, caller *model.User, req model.AppQueryRequest) (*model.Page[model.AppVO], error) {
	if req.PageSize > MaxVOPageSize {
		return nil, apperror.ValidationFailed("pageSize",
			fmt.Sprintf("page size must be %d or less", MaxVOPageSize))
	}
	page, err := s.apps.PageApps(ctx, toAppQuery(req))
	if err != nil {
		return nil, fmt.Errorf("service: listing apps: %w", err)
	}
	return s.GetAppVOPage(ctx, caller, page), nil
}

// ListMyVOPage lists the caller's own apps. Any userId in req is replaced
// by the caller's id.
func (s *AppService) ListMyVOPage(ctx context.Context, caller *model.User, req model.AppQueryRequest) (*model.Page[model.AppVO], error) {
	if caller == nil {
		return nil, apperror.Unauthorized("not logged in")
	}
	req.UserID = caller.ID
	return s.ListVOPage(ctx, caller, req)
}

func toAppQuery(req model.AppQueryRequest) repository.AppQuery {
	return repository.AppQuery{
		ID:         req.ID,
		NotID:      req.NotID,
		Title:      req.Title,
		Content:    req.Content,
		SearchText: req.SearchText,
		Tags:       req.Tags,
		UserID:     req.UserID,
		SortField:  req.SortField,
		SortOrder:  req.SortOrder,
		Current:    req.Current,
		PageSize:   req.PageSize,
	}
}
