package services

import (
	"context"
	"errors"

	"examprep/backend/models"
	"examprep/backend/repository"
	"examprep/backend/utils"
)

const (
	defaultWeeklyWindow = 4
	defaultRecentTests  = 5
	msgAnalyticsMissing = "Analytics not found"
)

// InsightsService exposes the analytics row and recent history to its owner.
type InsightsService struct {
	analytics repository.AnalyticsRepository
	attempts  repository.AttemptRepository
}

func NewInsightsService(analytics repository.AnalyticsRepository, attempts repository.AttemptRepository) *InsightsService {
	return &InsightsService{analytics: analytics, attempts: attempts}
}

// Me returns the caller's analytics, creating an empty row on first access.
func (s *InsightsService) Me(ctx context.Context, userID string) (*models.Analytics, error) {
	a, err := s.analytics.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, utils.NewStorageError("Could not load analytics", err)
	}
	return a, nil
}

func (s *InsightsService) SubjectPerformance(ctx context.Context, userID string) ([]models.SubjectPerformance, error) {
	a, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if a.SubjectPerformance == nil {
		return []models.SubjectPerformance{}, nil
	}
	return a.SubjectPerformance, nil
}

func (s *InsightsService) TopicMastery(ctx context.Context, userID string) ([]models.TopicMastery, error) {
	a, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if a.TopicMastery == nil {
		return []models.TopicMastery{}, nil
	}
	return a.TopicMastery, nil
}

// WeeklyProgress returns the last weeks entries, oldest first.
func (s *InsightsService) WeeklyProgress(ctx context.Context, userID string, weeks int) ([]models.WeeklyProgress, error) {
	a, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if weeks <= 0 {
		weeks = defaultWeeklyWindow
	}
	progress := a.WeeklyProgress
	if len(progress) > weeks {
		progress = progress[len(progress)-weeks:]
	}
	if progress == nil {
		return []models.WeeklyProgress{}, nil
	}
	return progress, nil
}

func (s *InsightsService) RecentTests(ctx context.Context, userID string, limit int) ([]models.TestAttempt, error) {
	if limit <= 0 {
		limit = defaultRecentTests
	}
	if limit > maxResultsLimit {
		limit = maxResultsLimit
	}
	attempts, err := s.attempts.ListByUser(ctx, userID, repository.AttemptQuery{
		Limit:         limit,
		OrderBy:       "completed_at",
		Desc:          true,
		CompletedOnly: true,
	})
	if err != nil {
		return nil, utils.NewStorageError("Could not load recent tests", err)
	}
	return attempts, nil
}

func (s *InsightsService) find(ctx context.Context, userID string) (*models.Analytics, error) {
	a, err := s.analytics.Find(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewNotFoundError(msgAnalyticsMissing)
	}
	if err != nil {
		return nil, utils.NewStorageError("Could not load analytics", err)
	}
	return a, nil
}
