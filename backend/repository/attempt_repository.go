package repository

import (
	"context"

	"examprep/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

// Create always inserts; attempts are never updated afterwards.
func (r *attemptRepository) Create(ctx context.Context, attempt *models.TestAttempt) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(attempt).Error
}

func (r *attemptRepository) GetForUser(ctx context.Context, userID, id string) (*models.TestAttempt, error) {
	var attempt models.TestAttempt
	err := r.db.WithContext(ctx).
		Preload("Test").
		Preload("Test.Subject").
		Where("id = ? AND user_id = ?", id, userID).
		First(&attempt).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &attempt, nil
}

func (r *attemptRepository) ListByUser(ctx context.Context, userID string, q AttemptQuery) ([]models.TestAttempt, error) {
	query := r.db.WithContext(ctx).
		Preload("Test", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "type", "subject_id", "total_questions", "total_points")
		}).
		Preload("Test.Subject", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "code", "icon", "color")
		}).
		Where("user_id = ?", userID)

	if q.CompletedOnly {
		query = query.Where("status = ?", models.AttemptStatusCompleted)
	}

	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = "completed_at"
	}
	query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: orderBy}, Desc: q.Desc})

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var attempts []models.TestAttempt
	if err := query.Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
