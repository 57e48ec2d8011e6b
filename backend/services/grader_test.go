package services

import (
	"fmt"
	"testing"
	"time"

	"examprep/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradingFixture builds a stored test whose questions all have answer "a".
func gradingFixture(topics ...string) (TestRef, map[string]models.Question) {
	questions := make(map[string]models.Question, len(topics))
	ids := make([]string, 0, len(topics))
	for i, topic := range topics {
		id := fmt.Sprintf("q%d", i+1)
		ids = append(ids, id)
		questions[id] = models.Question{Model: models.Model{ID: id}, Topic: topic, CorrectAnswer: "a"}
	}
	test := &models.Test{Model: models.Model{ID: "t1"}, SubjectID: "math", QuestionIDs: ids, TotalQuestions: len(ids)}
	return PersistedTest(test), questions
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 70, Percentage(7, 10))
	assert.Equal(t, 75, Percentage(3, 4))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 50, Percentage(1, 2))
	assert.Equal(t, 0, Percentage(5, 0))
}

func TestElapsedMinutes(t *testing.T) {
	start := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 12, ElapsedMinutes(start, start.Add(12*time.Minute+59*time.Second)))
	assert.Equal(t, 0, ElapsedMinutes(start, start.Add(59*time.Second)))
	assert.Equal(t, 0, ElapsedMinutes(start, start.Add(-time.Hour)))
}

func TestGradeSevenOfTen(t *testing.T) {
	ref, questions := gradingFixture(
		"Algebra", "Algebra", "Algebra", "Algebra",
		"Geometry", "Geometry", "Geometry", "Geometry", "Geometry", "Geometry",
	)
	answers := []SubmittedAnswer{
		{Question: "q1", SelectedAnswer: "a"},
		{Question: "q2", SelectedAnswer: "a"},
		{Question: "q3", SelectedAnswer: "a"},
		{Question: "q4", SelectedAnswer: "b"},
		{Question: "q5", SelectedAnswer: "a"},
		{Question: "q6", SelectedAnswer: "a"},
		{Question: "q7", SelectedAnswer: "a"},
		{Question: "q8", SelectedAnswer: "a", Flagged: true, TimeTaken: 40},
		{Question: "q9", SelectedAnswer: "c"},
		{Question: "q10", SelectedAnswer: ""},
	}
	start := fixedNow.Add(-25 * time.Minute)

	res := Grade(ref, answers, start, fixedNow, questions)

	assert.Equal(t, 10, res.TotalQuestions)
	assert.Equal(t, 7, res.CorrectAnswers)
	assert.Equal(t, 2, res.IncorrectAnswers)
	assert.Equal(t, 1, res.Unanswered)
	assert.Equal(t, 7, res.Score)
	assert.Equal(t, 70, res.Percentage)
	assert.Equal(t, 25, res.TimeTaken)
	assert.Equal(t, 10, res.Submitted)
	assert.Equal(t, []models.TopicPerformance{
		{Topic: "Algebra", Attempted: 4, Correct: 3, Percentage: 75},
		{Topic: "Geometry", Attempted: 6, Correct: 4, Percentage: 67},
	}, res.TopicPerformance)
	assert.Equal(t, models.AnswerRecord{Question: "q8", SelectedAnswer: "a", IsCorrect: true, TimeTaken: 40, Flagged: true}, res.Answers[7])
}

func TestGradeDropsUnknownAndDuplicateAnswers(t *testing.T) {
	ref, questions := gradingFixture("Algebra", "Algebra", "Algebra")
	answers := []SubmittedAnswer{
		{Question: "q1", SelectedAnswer: "a"},
		{Question: "q1", SelectedAnswer: "b"},
		{Question: "ghost", SelectedAnswer: "a"},
		{Question: "q2", SelectedAnswer: "b"},
	}

	res := Grade(ref, answers, fixedNow, fixedNow, questions)

	assert.Equal(t, 2, res.Submitted)
	assert.Equal(t, 1, res.CorrectAnswers)
	assert.Equal(t, 1, res.IncorrectAnswers)
	assert.Equal(t, 1, res.Unanswered)
	require.Len(t, res.Answers, 3)
	assert.Equal(t, "q1", res.Answers[0].Question)
	assert.True(t, res.Answers[0].IsCorrect)
	assert.Equal(t, models.AnswerRecord{Question: "q3"}, res.Answers[2])
	assert.Equal(t, []models.TopicPerformance{{Topic: "Algebra", Attempted: 2, Correct: 1, Percentage: 50}}, res.TopicPerformance)
}

func TestGradeCountsEmptySelectionAsAttempted(t *testing.T) {
	ref, questions := gradingFixture("Algebra", "Algebra")

	res := Grade(ref, []SubmittedAnswer{
		{Question: "q1", SelectedAnswer: ""},
		{Question: "q2", SelectedAnswer: "a"},
	}, fixedNow, fixedNow, questions)

	assert.Equal(t, 1, res.Unanswered)
	assert.False(t, res.Answers[0].IsCorrect)
	assert.Equal(t, []models.TopicPerformance{{Topic: "Algebra", Attempted: 2, Correct: 1, Percentage: 50}}, res.TopicPerformance)
}

func TestGradeCountsAlwaysAddUp(t *testing.T) {
	ref, questions := gradingFixture("A", "B", "C", "A", "B", "C", "A")
	choices := []string{"a", "b", ""}

	for mask := 0; mask < 3*3*3*3; mask++ {
		var answers []SubmittedAnswer
		m := mask
		for i := 1; i <= 4; i++ {
			answers = append(answers, SubmittedAnswer{Question: fmt.Sprintf("q%d", i*2-1), SelectedAnswer: choices[m%3]})
			m /= 3
		}
		res := Grade(ref, answers, fixedNow, fixedNow, questions)
		assert.Equal(t, res.TotalQuestions, res.CorrectAnswers+res.IncorrectAnswers+res.Unanswered)
		assert.Equal(t, Percentage(res.CorrectAnswers, res.TotalQuestions), res.Percentage)
		assert.Len(t, res.Answers, res.TotalQuestions)
		for _, tp := range res.TopicPerformance {
			assert.LessOrEqual(t, tp.Correct, tp.Attempted)
		}
	}
}

func TestGradeDynamicTest(t *testing.T) {
	spec := &TestSpec{
		ID:             DynamicTestPrefix + "x",
		Subject:        SubjectSummary{ID: "math"},
		TotalQuestions: 99,
		Questions:      []PublicQuestion{{ID: "q1"}, {ID: "q2"}},
	}
	ref := DynamicTest(spec)
	questions := map[string]models.Question{
		"q1": {Model: models.Model{ID: "q1"}, Topic: "Algebra", CorrectAnswer: "a"},
		"q2": {Model: models.Model{ID: "q2"}, Topic: "Algebra", CorrectAnswer: "b"},
	}

	res := Grade(ref, []SubmittedAnswer{{Question: "q1", SelectedAnswer: "a"}}, fixedNow, fixedNow, questions)

	assert.True(t, ref.IsDynamic())
	assert.Nil(t, ref.Persisted())
	assert.Equal(t, "math", ref.SubjectID())
	assert.Equal(t, 2, res.TotalQuestions, "declared total is ignored when questions are listed")
	assert.Equal(t, 50, res.Percentage)
}

func TestGradeEmptyTest(t *testing.T) {
	ref := PersistedTest(&models.Test{Model: models.Model{ID: "empty"}})

	res := Grade(ref, []SubmittedAnswer{{Question: "q1", SelectedAnswer: "a"}}, fixedNow, fixedNow, nil)

	assert.Zero(t, res.TotalQuestions)
	assert.Zero(t, res.Percentage)
	assert.Empty(t, res.Answers)
	assert.Empty(t, res.TopicPerformance)
}
