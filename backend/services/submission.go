package services

import (
	"context"
	"errors"
	"time"

	"examprep/backend/metrics"
	"examprep/backend/models"
	"examprep/backend/repository"
	"examprep/backend/utils"

	"golang.org/x/sync/errgroup"
)

// questionStatWorkers bounds the concurrent usage counter writes of one
// submission.
const questionStatWorkers = 8

type SubmitRequest struct {
	Answers   []SubmittedAnswer `json:"answers" validate:"required,dive"`
	StartTime time.Time         `json:"startTime"`
	EndTime   time.Time         `json:"endTime"`
	// TestData is the TestSpec of a dynamic test, echoed back by the client.
	TestData *TestSpec `json:"testData"`
}

// SubmissionReceipt is what the test-taker sees after submitting.
type SubmissionReceipt struct {
	AttemptID        string                    `json:"attemptId"`
	Score            int                       `json:"score"`
	Percentage       int                       `json:"percentage"`
	CorrectAnswers   int                       `json:"correctAnswers"`
	IncorrectAnswers int                       `json:"incorrectAnswers"`
	Unanswered       int                       `json:"unanswered"`
	TimeTaken        int                       `json:"timeTaken"`
	TopicPerformance []models.TopicPerformance `json:"topicPerformance"`
}

// SubmissionService grades a submission, records the attempt and then
// updates question statistics and the user's analytics.
type SubmissionService struct {
	tests     repository.TestRepository
	questions repository.QuestionRepository
	recorder  *AttemptRecorder
	analytics *AnalyticsUpdater
	metrics   *metrics.Metrics
	log       *utils.Logger
}

func NewSubmissionService(
	tests repository.TestRepository,
	questions repository.QuestionRepository,
	recorder *AttemptRecorder,
	analytics *AnalyticsUpdater,
	m *metrics.Metrics,
	log *utils.Logger,
) *SubmissionService {
	return &SubmissionService{
		tests:     tests,
		questions: questions,
		recorder:  recorder,
		analytics: analytics,
		metrics:   m,
		log:       log.With("component", "submission"),
	}
}

// Submit fails only before the attempt is recorded. Question statistics and
// analytics are best-effort once the attempt exists.
func (s *SubmissionService) Submit(ctx context.Context, caller utils.Identity, testID string, req SubmitRequest) (*SubmissionReceipt, error) {
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	ref, err := s.resolveTest(ctx, testID, req.TestData)
	if err != nil {
		return nil, err
	}

	full, err := s.questions.FindByIDs(ctx, ref.QuestionIDs())
	if err != nil {
		return nil, utils.NewStorageError("Could not load questions", err)
	}
	byID := make(map[string]models.Question, len(full))
	for _, q := range full {
		byID[q.ID] = q
	}

	result := Grade(ref, req.Answers, req.StartTime, req.EndTime, byID)

	attempt, err := s.recorder.Record(ctx, caller.UserID, ref, result)
	if err != nil {
		return nil, err
	}

	kind := "persisted"
	if ref.IsDynamic() {
		kind = "dynamic"
	} else {
		s.bumpQuestionStats(ctx, result.Graded())
	}
	s.metrics.SubmissionGraded(kind, result.Percentage)

	if _, err := s.analytics.Apply(ctx, caller.UserID, ref.SubjectID(), result); err != nil {
		s.metrics.AnalyticsFailed()
		s.log.Error("analytics update failed", "user_id", caller.UserID, "attempt_id", attempt.ID, "error", err)
	}

	s.log.Info("test submitted",
		"user_id", caller.UserID,
		"test_id", ref.ID(),
		"attempt_id", attempt.ID,
		"percentage", result.Percentage,
	)

	return &SubmissionReceipt{
		AttemptID:        attempt.ID,
		Score:            result.Score,
		Percentage:       result.Percentage,
		CorrectAnswers:   result.CorrectAnswers,
		IncorrectAnswers: result.IncorrectAnswers,
		Unanswered:       result.Unanswered,
		TimeTaken:        result.TimeTaken,
		TopicPerformance: result.TopicPerformance,
	}, nil
}

func validateSubmission(req SubmitRequest) error {
	if req.Answers == nil {
		return utils.NewValidationError("Please provide answers")
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return utils.NewValidationError("Please provide startTime and endTime")
	}
	if req.EndTime.Before(req.StartTime) {
		return utils.NewValidationError("endTime cannot be before startTime")
	}
	return nil
}

// resolveTest prefers a stored test and falls back to the inline TestSpec.
func (s *SubmissionService) resolveTest(ctx context.Context, testID string, inline *TestSpec) (TestRef, error) {
	if testID != "" && !IsDynamicTestID(testID) {
		test, err := s.tests.GetByID(ctx, testID)
		switch {
		case err == nil:
			return PersistedTest(test), nil
		case !errors.Is(err, repository.ErrNotFound):
			return TestRef{}, utils.NewStorageError("Could not load test", err)
		}
	}

	if inline == nil {
		return TestRef{}, utils.NewNotFoundError(msgTestNotFound)
	}
	if inline.Subject.ID == "" {
		return TestRef{}, utils.NewValidationError("Test data must include its subject")
	}
	return DynamicTest(inline), nil
}

func (s *SubmissionService) bumpQuestionStats(ctx context.Context, graded []models.AnswerRecord) {
	var g errgroup.Group
	g.SetLimit(questionStatWorkers)
	for _, rec := range graded {
		rec := rec
		g.Go(func() error {
			if err := s.questions.IncrementStats(ctx, rec.Question, rec.IsCorrect); err != nil {
				s.metrics.QuestionStatFailed()
				s.log.Warn("question stats not updated", "question_id", rec.Question, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
