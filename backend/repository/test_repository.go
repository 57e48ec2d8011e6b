package repository

import (
	"context"
	"strings"

	"examprep/backend/models"

	"gorm.io/gorm"
)

type testRepository struct {
	db *gorm.DB
}

func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) Create(ctx context.Context, test *models.Test) error {
	return r.db.WithContext(ctx).Create(test).Error
}

func (r *testRepository) GetByID(ctx context.Context, id string) (*models.Test, error) {
	var test models.Test
	err := r.db.WithContext(ctx).
		Preload("Subject", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "code", "icon", "color")
		}).
		Where("id = ?", id).
		First(&test).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &test, nil
}

func (r *testRepository) List(ctx context.Context, filter TestFilter) ([]models.Test, error) {
	query := r.db.WithContext(ctx).Model(&models.Test{}).
		Preload("Subject", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "code", "icon", "color")
		}).
		Where("is_active = ?", true)

	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(instructions) LIKE ?", like, like)
	}
	if filter.SubjectID != "" {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	switch filter.Sort {
	case "popularity":
		query = query.Order("(SELECT COUNT(*) FROM test_attempts WHERE test_attempts.test_id = tests.id) DESC").
			Order("created_at DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var tests []models.Test
	if err := query.Find(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}
