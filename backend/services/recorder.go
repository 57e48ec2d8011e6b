package services

import (
	"context"

	"examprep/backend/models"
	"examprep/backend/repository"
	"examprep/backend/utils"
)

// AttemptRecorder writes graded attempts. Attempts are never updated.
type AttemptRecorder struct {
	attempts repository.AttemptRepository
}

func NewAttemptRecorder(attempts repository.AttemptRepository) *AttemptRecorder {
	return &AttemptRecorder{attempts: attempts}
}

func (r *AttemptRecorder) Record(ctx context.Context, userID string, ref TestRef, res GradeResult) (*models.TestAttempt, error) {
	attempt := &models.TestAttempt{
		UserID:           userID,
		SubjectID:        ref.SubjectID(),
		Answers:          res.Answers,
		Score:            res.Score,
		Percentage:       res.Percentage,
		TotalQuestions:   res.TotalQuestions,
		CorrectAnswers:   res.CorrectAnswers,
		IncorrectAnswers: res.IncorrectAnswers,
		Unanswered:       res.Unanswered,
		TimeTaken:        res.TimeTaken,
		StartedAt:        res.StartedAt,
		CompletedAt:      res.CompletedAt,
		Status:           models.AttemptStatusCompleted,
		TopicPerformance: res.TopicPerformance,
	}
	if t := ref.Persisted(); t != nil {
		id := t.ID
		attempt.TestID = &id
	}

	if err := r.attempts.Create(ctx, attempt); err != nil {
		return nil, utils.NewStorageError("Could not record test attempt", err)
	}
	return attempt, nil
}
