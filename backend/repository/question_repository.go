package repository

import (
	"context"

	"examprep/backend/models"

	"gorm.io/gorm"
)

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) SampleForTest(ctx context.Context, filter QuestionFilter, limit int) ([]models.Question, error) {
	var out []models.Question
	if limit <= 0 {
		return out, nil
	}

	query := r.db.WithContext(ctx).
		Omit("correct_answer", "explanation", "created_by").
		Where("subject_id = ? AND is_active = ? AND type = ?", filter.SubjectID, true, models.QuestionTypeMultipleChoice)

	if filter.Difficulty != "" && filter.Difficulty != models.DifficultyMixed {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}

	if err := query.Order("RANDOM()").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	var out []models.Question
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// IncrementStats bumps the counters in SQL so concurrent submissions add up
// instead of overwriting each other.
func (r *questionRepository) IncrementStats(ctx context.Context, id string, correct bool) error {
	updates := map[string]interface{}{
		"usage_count": gorm.Expr("usage_count + ?", 1),
	}
	if correct {
		updates["correct_count"] = gorm.Expr("correct_count + ?", 1)
	}

	res := r.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", id).UpdateColumns(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type subjectRepository struct {
	db *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&subject).Error; err != nil {
		return nil, notFound(err)
	}
	return &subject, nil
}
