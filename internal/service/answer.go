package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/auth"
	"github.com/sakif/wisdom-share/internal/metrics"
	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/repository"
)

const MaxResultNameLength = 128

// AnswerService records completed answer sheets. They feed the statistics.
type AnswerService struct {
	apps    repository.AppRepository
	answers repository.AnswerRepository
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewAnswerService(
	apps repository.AppRepository,
	answers repository.AnswerRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AnswerService {
	return &AnswerService{apps: apps, answers: answers, metrics: m, logger: logger}
}

// Add stores one answer by caller and returns its id.
func (s *AnswerService) Add(ctx context.Context, caller *model.User, req model.UserAnswerAddRequest) (int64, error) {
	if err := auth.Authorize(caller, nil, auth.ActionCreate); err != nil {
		return 0, err
	}
	if req.AppID <= 0 {
		return 0, apperror.ValidationFailed("appId", "appId must be positive")
	}
	result := strings.TrimSpace(req.ResultName)
	if result == "" {
		return 0, apperror.ValidationFailed("resultName", "resultName is required")
	}
	if len([]rune(result)) > MaxResultNameLength {
		return 0, apperror.ValidationFailed("resultName",
			fmt.Sprintf("resultName must be %d characters or less", MaxResultNameLength))
	}

	if _, err := s.apps.GetAppByID(ctx, req.AppID); err != nil {
		return 0, err
	}

	choices := req.Choices
	if choices == nil {
		choices = []string{}
	}
	encoded, err := json.Marshal(choices)
	if err != nil {
		return 0, fmt.Errorf("service: encoding choices: %w", err)
	}

	answer := &model.UserAnswer{
		AppID:      req.AppID,
		UserID:     caller.ID,
		Choices:    string(encoded),
		ResultName: result,
	}
	if err := s.answers.CreateAnswer(ctx, answer); err != nil {
		return 0, fmt.Errorf("service: saving answer: %w", err)
	}

	s.metrics.Answer()
	s.logger.Info("answer recorded",
		slog.Int64("answerID", answer.ID),
		slog.Int64("appID", answer.AppID),
		slog.Int64("userID", caller.ID),
	)
	return answer.ID, nil
}
