package service

import (
	"context"
	"fmt"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/repository"
)

// TopAppsLimit is how many apps the answer-count ranking returns.
const TopAppsLimit = 10

type StatisticService struct {
	answers repository.AnswerRepository
}

func NewStatisticService(answers repository.AnswerRepository) *StatisticService {
	return &StatisticService{answers: answers}
}

// AnswerCount ranks apps by recorded answers, most answered first.
func (s *StatisticService) AnswerCount(ctx context.Context) ([]model.AppAnswerCount, error) {
	counts, err := s.answers.AppAnswerCounts(ctx, TopAppsLimit)
	if err != nil {
		return nil, fmt.Errorf("service: counting answers: %w", err)
	}
	if counts == nil {
		counts = []model.AppAnswerCount{}
	}
	return counts, nil
}

// AnswerResultCount returns how often each result was reached for appID.
func (s *StatisticService) AnswerResultCount(ctx context.Context, appID int64) ([]model.AppAnswerResultCount, error) {
	if appID <= 0 {
		return nil, apperror.ValidationFailed("appId", "appId must be positive")
	}
	counts, err := s.answers.AppAnswerResultCounts(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("service: counting results for app %d: %w", appID, err)
	}
	if counts == nil {
		counts = []model.AppAnswerResultCount{}
	}
	return counts, nil
}
