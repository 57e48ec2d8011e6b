package services

import (
	"context"
	"errors"
	"strings"

	"examprep/backend/models"
	"examprep/backend/repository"
	"examprep/backend/utils"
)

const (
	defaultResultsLimit = 10
	maxResultsLimit     = 100
	defaultResultsSort  = "-completedAt"
	msgResultNotFound   = "Test result not found"
)

var attemptSortColumns = map[string]string{
	"completedAt": "completed_at",
	"percentage":  "percentage",
	"score":       "score",
}

// ReviewQuestion is a question as shown after the attempt, answer included.
type ReviewQuestion struct {
	ID            string                  `json:"id"`
	Text          string                  `json:"text"`
	Type          string                  `json:"type"`
	Options       []models.QuestionOption `json:"options"`
	Topic         string                  `json:"topic"`
	Difficulty    string                  `json:"difficulty"`
	Explanation   string                  `json:"explanation"`
	CorrectAnswer string                  `json:"correctAnswer"`
}

type ReviewItem struct {
	Question   ReviewQuestion `json:"question"`
	UserAnswer *string        `json:"userAnswer"`
	IsCorrect  bool           `json:"isCorrect"`
	TimeTaken  int            `json:"timeTaken"`
	Flagged    bool           `json:"flagged"`
}

type AttemptReview struct {
	Attempt *models.TestAttempt `json:"attempt"`
	Review  []ReviewItem        `json:"review"`
}

// ResultsService serves a user's own attempt history.
type ResultsService struct {
	attempts  repository.AttemptRepository
	questions repository.QuestionRepository
}

func NewResultsService(attempts repository.AttemptRepository, questions repository.QuestionRepository) *ResultsService {
	return &ResultsService{attempts: attempts, questions: questions}
}

// MyResults lists completed attempts. sort names one of completedAt,
// percentage or score; a leading "-" sorts descending.
func (s *ResultsService) MyResults(ctx context.Context, userID string, limit int, sort string) ([]models.TestAttempt, error) {
	q, err := attemptQuery(limit, sort)
	if err != nil {
		return nil, err
	}
	attempts, err := s.attempts.ListByUser(ctx, userID, q)
	if err != nil {
		return nil, utils.NewStorageError("Could not load results", err)
	}
	return attempts, nil
}

func attemptQuery(limit int, sort string) (repository.AttemptQuery, error) {
	if limit <= 0 {
		limit = defaultResultsLimit
	}
	if limit > maxResultsLimit {
		limit = maxResultsLimit
	}
	if sort == "" {
		sort = defaultResultsSort
	}
	desc := strings.HasPrefix(sort, "-")
	column, ok := attemptSortColumns[strings.TrimPrefix(sort, "-")]
	if !ok {
		return repository.AttemptQuery{}, utils.NewValidationError("Invalid sort field", map[string]string{"sort": sort})
	}
	return repository.AttemptQuery{Limit: limit, OrderBy: column, Desc: desc, CompletedOnly: true}, nil
}

func (s *ResultsService) Result(ctx context.Context, userID, attemptID string) (*models.TestAttempt, error) {
	attempt, err := s.attempts.GetForUser(ctx, userID, attemptID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewNotFoundError(msgResultNotFound)
	}
	if err != nil {
		return nil, utils.NewStorageError("Could not load result", err)
	}
	return attempt, nil
}

// Review pairs every question of the attempt with the user's answer. Dynamic
// attempts have no Test row, so their questions come from the recorded answers.
func (s *ResultsService) Review(ctx context.Context, userID, attemptID string) (*AttemptReview, error) {
	attempt, err := s.Result(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}

	var ids []string
	if attempt.Test != nil && len(attempt.Test.QuestionIDs) > 0 {
		ids = attempt.Test.QuestionIDs
	} else {
		for _, a := range attempt.Answers {
			ids = append(ids, a.Question)
		}
	}

	questions, err := s.questions.FindByIDs(ctx, ids)
	if err != nil {
		return nil, utils.NewStorageError("Could not load questions", err)
	}
	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	answers := make(map[string]models.AnswerRecord, len(attempt.Answers))
	for _, a := range attempt.Answers {
		if _, ok := answers[a.Question]; !ok {
			answers[a.Question] = a
		}
	}

	review := make([]ReviewItem, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			continue
		}
		item := ReviewItem{
			Question: ReviewQuestion{
				ID:            q.ID,
				Text:          q.Text,
				Type:          q.Type,
				Options:       q.Options,
				Topic:         q.Topic,
				Difficulty:    q.Difficulty,
				Explanation:   q.Explanation,
				CorrectAnswer: q.CorrectAnswer,
			},
		}
		if a, ok := answers[id]; ok {
			if a.SelectedAnswer != "" {
				selected := a.SelectedAnswer
				item.UserAnswer = &selected
			}
			item.IsCorrect = a.IsCorrect
			item.TimeTaken = a.TimeTaken
			item.Flagged = a.Flagged
		}
		review = append(review, item)
	}

	return &AttemptReview{Attempt: attempt, Review: review}, nil
}
