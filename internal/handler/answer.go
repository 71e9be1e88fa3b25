package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/service"
)

type AnswerHandler struct {
	answers *service.AnswerService
	logger  *slog.Logger
}

func NewAnswerHandler(answers *service.AnswerService, logger *slog.Logger) *AnswerHandler {
	return &AnswerHandler{answers: answers, logger: logger}
}

// HandleAdd handles POST /api/user_answer/add and returns the answer id.
func (h *AnswerHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req model.UserAnswerAddRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := h.answers.Add(r.Context(), caller(r), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, id)
}
