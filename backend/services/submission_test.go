package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"examprep/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeTest(t *testing.T, p *pipeline, id string, questionIDs []string) *models.Test {
	t.Helper()
	test := &models.Test{
		Model:          models.Model{ID: id},
		Title:          "Stored",
		SubjectID:      "math",
		Type:           models.TestTypeSubject,
		QuestionIDs:    questionIDs,
		TotalQuestions: len(questionIDs),
		Duration:       60,
		IsActive:       true,
	}
	require.NoError(t, p.tests.Create(context.Background(), test))
	return test
}

func answerAll(ids []string, selected ...string) []SubmittedAnswer {
	out := make([]SubmittedAnswer, 0, len(ids))
	for i, id := range ids {
		choice := "a"
		if i < len(selected) {
			choice = selected[i]
		}
		out = append(out, SubmittedAnswer{Question: id, SelectedAnswer: choice})
	}
	return out
}

func submitWindow() (time.Time, time.Time) {
	return fixedNow.Add(-15 * time.Minute), fixedNow
}

func TestSubmitPersistedTest(t *testing.T) {
	p := newPipeline(t)
	ids := p.questions.seed("math", "Algebra", 4)
	storeTest(t, p, "stored", ids)
	start, end := submitWindow()

	receipt, err := p.submit.Submit(context.Background(), freeStudent, "stored", SubmitRequest{
		Answers:   answerAll(ids[:3], "a", "b", ""),
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, receipt.AttemptID)
	assert.Equal(t, 1, receipt.Score)
	assert.Equal(t, 25, receipt.Percentage)
	assert.Equal(t, 1, receipt.CorrectAnswers)
	assert.Equal(t, 1, receipt.IncorrectAnswers)
	assert.Equal(t, 2, receipt.Unanswered)
	assert.Equal(t, 15, receipt.TimeTaken)
	assert.Equal(t, []models.TopicPerformance{{Topic: "Algebra", Attempted: 3, Correct: 1, Percentage: 33}}, receipt.TopicPerformance)

	require.Equal(t, 1, p.attempts.count())
	attempt := p.attempts.rows[0]
	require.NotNil(t, attempt.TestID)
	assert.Equal(t, "stored", *attempt.TestID)
	assert.Equal(t, freeStudent.UserID, attempt.UserID)
	assert.Equal(t, models.AttemptStatusCompleted, attempt.Status)
	assert.Len(t, attempt.Answers, 4)

	assert.Equal(t, 1, p.questions.usage[ids[0]])
	assert.Equal(t, 1, p.questions.correct[ids[0]])
	assert.Equal(t, 1, p.questions.usage[ids[1]])
	assert.Zero(t, p.questions.correct[ids[1]])
	assert.Equal(t, 1, p.questions.usage[ids[2]], "empty selections still count as usage")
	assert.Zero(t, p.questions.usage[ids[3]], "questions without an answer are not counted")

	analytics := p.analytics.get(freeStudent.UserID)
	assert.Equal(t, 1, analytics.TotalTests)
	assert.InDelta(t, 25.0, analytics.AverageScore, 1e-9)
	assert.Equal(t, 15, analytics.TotalStudyTime)
	assert.Equal(t, []string{"Algebra"}, []string(analytics.Weaknesses))
}

func TestSubmitDynamicTest(t *testing.T) {
	p := newPipeline(t)
	p.questions.seed("math", "Algebra", 3)

	spec, err := p.assembler.Generate(context.Background(), freeStudent, GenerateRequest{
		SubjectID: "math", Type: models.TestTypeQuick, QuestionCount: 3,
	})
	require.NoError(t, err)
	start, end := submitWindow()

	receipt, err := p.submit.Submit(context.Background(), freeStudent, spec.ID, SubmitRequest{
		Answers:   answerAll(spec.QuestionIDs()),
		StartTime: start,
		EndTime:   end,
		TestData:  spec,
	})
	require.NoError(t, err)

	assert.Equal(t, 100, receipt.Percentage)
	attempt := p.attempts.rows[0]
	assert.Nil(t, attempt.TestID)
	assert.Equal(t, "math", attempt.SubjectID)
	assert.Empty(t, p.questions.usage, "dynamic tests leave question stats alone")

	analytics := p.analytics.get(freeStudent.UserID)
	require.Len(t, analytics.SubjectPerformance, 1)
	assert.Equal(t, "math", analytics.SubjectPerformance[0].SubjectID)
}

func TestSubmitUnknownStoredIDFallsBackToTestData(t *testing.T) {
	p := newPipeline(t)
	ids := p.questions.seed("math", "Algebra", 2)
	spec := &TestSpec{ID: "client-made", Subject: SubjectSummary{ID: "math"}, Questions: []PublicQuestion{{ID: ids[0]}, {ID: ids[1]}}}
	start, end := submitWindow()

	receipt, err := p.submit.Submit(context.Background(), freeStudent, "missing", SubmitRequest{
		Answers: answerAll(ids), StartTime: start, EndTime: end, TestData: spec,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, receipt.Percentage)
	assert.Nil(t, p.attempts.rows[0].TestID)
}

func TestSubmitTestNotFound(t *testing.T) {
	p := newPipeline(t)
	start, end := submitWindow()

	_, err := p.submit.Submit(context.Background(), freeStudent, "missing", SubmitRequest{
		Answers: []SubmittedAnswer{}, StartTime: start, EndTime: end,
	})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Zero(t, p.attempts.count())
}

func TestSubmitValidation(t *testing.T) {
	p := newPipeline(t)
	ids := p.questions.seed("math", "Algebra", 1)
	storeTest(t, p, "stored", ids)
	start, end := submitWindow()

	cases := map[string]SubmitRequest{
		"missing answers":  {StartTime: start, EndTime: end},
		"missing start":    {Answers: []SubmittedAnswer{}, EndTime: end},
		"end before start": {Answers: []SubmittedAnswer{}, StartTime: end, EndTime: start},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := p.submit.Submit(context.Background(), freeStudent, "stored", req)
			assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
		})
	}
	assert.Zero(t, p.attempts.count())
}

func TestSubmitFailsWhenAttemptCannotBeRecorded(t *testing.T) {
	p := newPipeline(t)
	ids := p.questions.seed("math", "Algebra", 2)
	storeTest(t, p, "stored", ids)
	p.attempts.createErr = errors.New("connection reset")
	start, end := submitWindow()

	_, err := p.submit.Submit(context.Background(), freeStudent, "stored", SubmitRequest{
		Answers: answerAll(ids), StartTime: start, EndTime: end,
	})
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	assert.Empty(t, p.questions.usage)
	assert.Zero(t, p.analytics.get(freeStudent.UserID).TotalTests)
}

func TestSubmitSurvivesAnalyticsAndStatsFailures(t *testing.T) {
	p := newPipeline(t)
	ids := p.questions.seed("math", "Algebra", 2)
	storeTest(t, p, "stored", ids)
	p.analytics.writeErr = errors.New("deadlock detected")
	p.questions.failStats[ids[0]] = true
	start, end := submitWindow()

	receipt, err := p.submit.Submit(context.Background(), freeStudent, "stored", SubmitRequest{
		Answers: answerAll(ids), StartTime: start, EndTime: end,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, receipt.Percentage)
	assert.Equal(t, 1, p.attempts.count())
	assert.Equal(t, 1, p.questions.usage[ids[1]], "one failed increment does not stop the others")
}

func TestSubmitTwiceRecordsTwoAttempts(t *testing.T) {
	p := newPipeline(t)
	ids := p.questions.seed("math", "Algebra", 4)
	storeTest(t, p, "stored", ids)
	start, end := submitWindow()
	req := SubmitRequest{Answers: answerAll(ids, "a", "a", "b", "a"), StartTime: start, EndTime: end}

	first, err := p.submit.Submit(context.Background(), freeStudent, "stored", req)
	require.NoError(t, err)
	second, err := p.submit.Submit(context.Background(), freeStudent, "stored", req)
	require.NoError(t, err)

	assert.NotEqual(t, first.AttemptID, second.AttemptID)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Percentage, second.Percentage)
	assert.Equal(t, 2, p.attempts.count())
	assert.Equal(t, 2, p.analytics.get(freeStudent.UserID).TotalTests)
	assert.Equal(t, 2, p.questions.usage[ids[0]])
}

func TestConcurrentSubmissionsKeepEveryTest(t *testing.T) {
	p := newPipeline(t)
	ids := p.questions.seed("math", "Algebra", 3)
	storeTest(t, p, "stored", ids)
	p.analytics.delay = time.Millisecond
	start, end := submitWindow()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.submit.Submit(context.Background(), freeStudent, "stored", SubmitRequest{
				Answers: answerAll(ids), StartTime: start, EndTime: end,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, n, p.attempts.count())
	analytics := p.analytics.get(freeStudent.UserID)
	assert.Equal(t, n, analytics.TotalTests)
	assert.Equal(t, n*15, analytics.TotalStudyTime)
	assert.Equal(t, n, p.questions.usage[ids[0]])
}
