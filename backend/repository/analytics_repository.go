package repository

import (
	"context"
	"errors"
	"time"

	"examprep/backend/models"

	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Find(ctx context.Context, userID string) (*models.Analytics, error) {
	var a models.Analytics
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// GetOrCreate returns the user's row, creating a zeroed one on first use.
// A concurrent creator losing the unique-index race re-reads the winner's row.
func (r *analyticsRepository) GetOrCreate(ctx context.Context, userID string) (*models.Analytics, error) {
	a, err := r.Find(ctx, userID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	created := &models.Analytics{UserID: userID}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.Find(ctx, userID)
		}
		return nil, err
	}
	return created, nil
}

func (r *analyticsRepository) CompareAndSwap(ctx context.Context, next *models.Analytics, expectedVersion int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Analytics{}).
		Where("id = ? AND version = ?", next.ID, expectedVersion).
		Updates(map[string]interface{}{
			"total_tests":         next.TotalTests,
			"average_score":       next.AverageScore,
			"total_study_time":    next.TotalStudyTime,
			"current_streak":      next.CurrentStreak,
			"longest_streak":      next.LongestStreak,
			"last_study_date":     next.LastStudyDate,
			"subject_performance": next.SubjectPerformance,
			"topic_mastery":       next.TopicMastery,
			"weekly_progress":     next.WeeklyProgress,
			"strengths":           next.Strengths,
			"weaknesses":          next.Weaknesses,
			"recommendations":     next.Recommendations,
			"version":             expectedVersion + 1,
			"updated_at":          time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	next.Version = expectedVersion + 1
	return true, nil
}
