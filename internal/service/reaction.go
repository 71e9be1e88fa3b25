package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/auth"
	"github.com/sakif/wisdom-share/internal/metrics"
	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/repository"
)

// ReactionService toggles likes (thumbs) and bookmarks (favours).
type ReactionService struct {
	apps      repository.AppRepository
	reactions repository.ReactionRepository
	appVOs    *AppService
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewReactionService(
	apps repository.AppRepository,
	reactions repository.ReactionRepository,
	appVOs *AppService,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ReactionService {
	return &ReactionService{
		apps:      apps,
		reactions: reactions,
		appVOs:    appVOs,
		metrics:   m,
		logger:    logger,
	}
}

type reactionOps struct {
	kind   string
	has    func(ctx context.Context, appID, userID int64) (bool, error)
	add    func(ctx context.Context, appID, userID int64) error
	remove func(ctx context.Context, appID, userID int64) error
}

// ToggleThumb likes the app, or removes an existing like. It returns +1 or
// -1 for the change in the app's like count.
func (s *ReactionService) ToggleThumb(ctx context.Context, caller *model.User, appID int64) (int, error) {
	return s.toggle(ctx, caller, appID, reactionOps{
		kind:   "thumb",
		has:    s.reactions.HasThumb,
		add:    s.reactions.AddThumb,
		remove: s.reactions.RemoveThumb,
	})
}

// ToggleFavour bookmarks the app, or removes an existing bookmark.
func (s *ReactionService) ToggleFavour(ctx context.Context, caller *model.User, appID int64) (int, error) {
	return s.toggle(ctx, caller, appID, reactionOps{
		kind:   "favour",
		has:    s.reactions.HasFavour,
		add:    s.reactions.AddFavour,
		remove: s.reactions.RemoveFavour,
	})
}

func (s *ReactionService) toggle(ctx context.Context, caller *model.User, appID int64, ops reactionOps) (int, error) {
	if err := auth.Authorize(caller, nil, auth.ActionCreate); err != nil {
		return 0, err
	}
	if appID <= 0 {
		return 0, apperror.ValidationFailed("appId", "appId must be positive")
	}
	if _, err := s.apps.GetAppByID(ctx, appID); err != nil {
		return 0, err
	}

	has, err := ops.has(ctx, appID, caller.ID)
	if err != nil {
		return 0, fmt.Errorf("service: checking %s: %w", ops.kind, err)
	}

	delta := 1
	if has {
		delta = -1
		err = ops.remove(ctx, appID, caller.ID)
	} else {
		err = ops.add(ctx, appID, caller.ID)
	}
	if err != nil {
		// Another request from the same user won the race.
		if errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrNotFound) {
			return 0, apperror.OperationFailed(ops.kind + " changed concurrently, retry")
		}
		return 0, fmt.Errorf("service: toggling %s: %w", ops.kind, err)
	}

	s.metrics.Reaction(ops.kind, delta)
	s.logger.Debug("reaction toggled",
		slog.String("kind", ops.kind),
		slog.Int64("appID", appID),
		slog.Int64("userID", caller.ID),
		slog.Int("delta", delta),
	)
	return delta, nil
}

// ListMyFavourVOPage lists the apps the caller bookmarked, enriched.
func (s *ReactionService) ListMyFavourVOPage(ctx context.Context, caller *model.User, req model.AppQueryRequest) (*model.Page[model.AppVO], error) {
	if caller == nil {
		return nil, apperror.Unauthorized("not logged in")
	}
	if req.PageSize > MaxVOPageSize {
		return nil, apperror.ValidationFailed("pageSize",
			fmt.Sprintf("page size must be %d or less", MaxVOPageSize))
	}

	q := toAppQuery(req)
	q.FavourUserID = caller.ID

	page, err := s.apps.PageApps(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("service: listing favourites: %w", err)
	}
	return s.appVOs.GetAppVOPage(ctx, caller, page), nil
}
