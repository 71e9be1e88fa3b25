package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/service"
)

type ReactionHandler struct {
	reactions *service.ReactionService
	logger    *slog.Logger
}

func NewReactionHandler(reactions *service.ReactionService, logger *slog.Logger) *ReactionHandler {
	return &ReactionHandler{reactions: reactions, logger: logger}
}

// HandleThumb handles POST /api/app_thumb/ and returns +1 or -1.
func (h *ReactionHandler) HandleThumb(w http.ResponseWriter, r *http.Request) {
	var req model.ThumbRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	delta, err := h.reactions.ToggleThumb(r.Context(), caller(r), req.AppID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, delta)
}

// HandleFavour handles POST /api/app_favour/ and returns +1 or -1.
func (h *ReactionHandler) HandleFavour(w http.ResponseWriter, r *http.Request) {
	var req model.FavourRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	delta, err := h.reactions.ToggleFavour(r.Context(), caller(r), req.AppID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, delta)
}

// HandleMyFavourPage handles POST /api/app_favour/my/list/page.
func (h *ReactionHandler) HandleMyFavourPage(w http.ResponseWriter, r *http.Request) {
	var req model.AppQueryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	page, err := h.reactions.ListMyFavourVOPage(r.Context(), caller(r), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, page)
}
