package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/wisdom-share/internal/service"
)

type StatisticHandler struct {
	stats  *service.StatisticService
	logger *slog.Logger
}

func NewStatisticHandler(stats *service.StatisticService, logger *slog.Logger) *StatisticHandler {
	return &StatisticHandler{stats: stats, logger: logger}
}

// HandleAnswerCount handles GET /api/app/statistic/answer_count.
func (h *StatisticHandler) HandleAnswerCount(w http.ResponseWriter, r *http.Request) {
	counts, err := h.stats.AnswerCount(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, counts)
}

// HandleAnswerResultCount handles GET /api/app/statistic/answer_result_count?appId=n.
func (h *StatisticHandler) HandleAnswerResultCount(w http.ResponseWriter, r *http.Request) {
	appID, err := queryInt64(r, "appId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	counts, err := h.stats.AnswerResultCount(r.Context(), appID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, counts)
}
