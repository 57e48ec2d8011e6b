package services

import (
	"math"
	"time"

	"examprep/backend/models"
)

// TestRef is the test being graded: either a stored Test row or a dynamic
// test that only ever existed as a TestSpec.
type TestRef struct {
	persisted *models.Test
	dynamic   *TestSpec
}

func PersistedTest(t *models.Test) TestRef {
	return TestRef{persisted: t}
}

func DynamicTest(spec *TestSpec) TestRef {
	return TestRef{dynamic: spec}
}

func (r TestRef) IsDynamic() bool {
	return r.dynamic != nil
}

// Persisted returns the stored test, or nil for a dynamic one.
func (r TestRef) Persisted() *models.Test {
	return r.persisted
}

func (r TestRef) ID() string {
	if r.dynamic != nil {
		return r.dynamic.ID
	}
	if r.persisted != nil {
		return r.persisted.ID
	}
	return ""
}

func (r TestRef) SubjectID() string {
	if r.dynamic != nil {
		return r.dynamic.Subject.ID
	}
	if r.persisted != nil {
		return r.persisted.SubjectID
	}
	return ""
}

func (r TestRef) QuestionIDs() []string {
	if r.dynamic != nil {
		return r.dynamic.QuestionIDs()
	}
	if r.persisted != nil {
		return r.persisted.QuestionIDs
	}
	return nil
}

// TotalQuestions is the size of the question list. The declared total is
// only used when the test carries no question ids at all.
func (r TestRef) TotalQuestions() int {
	if n := len(r.QuestionIDs()); n > 0 {
		return n
	}
	switch {
	case r.dynamic != nil:
		return r.dynamic.TotalQuestions
	case r.persisted != nil:
		return r.persisted.TotalQuestions
	}
	return 0
}

type SubmittedAnswer struct {
	Question       string `json:"question" validate:"required"`
	SelectedAnswer string `json:"selectedAnswer" validate:"option_id"`
	TimeTaken      int    `json:"timeTaken" validate:"min=0"`
	Flagged        bool   `json:"flagged"`
}

// GradeResult is the outcome of grading one submission.
type GradeResult struct {
	// Answers holds one record per graded submitted answer, in submission
	// order, followed by the test's questions that received no answer.
	Answers []models.AnswerRecord
	// Submitted is how many leading Answers came from the submission.
	Submitted int

	Score            int
	Percentage       int
	TotalQuestions   int
	CorrectAnswers   int
	IncorrectAnswers int
	Unanswered       int
	TimeTaken        int
	StartedAt        time.Time
	CompletedAt      time.Time
	TopicPerformance []models.TopicPerformance
}

// Graded returns the records produced from submitted answers.
func (r GradeResult) Graded() []models.AnswerRecord {
	return r.Answers[:r.Submitted]
}

// Percentage rounds part/total to a whole percent; zero totals score 0.
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// ElapsedMinutes is the whole minutes between start and end, never negative.
func ElapsedMinutes(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

// Grade scores answers against the full question rows. It performs no I/O.
//
// Answers for questions outside the test, or whose question cannot be
// resolved, are dropped, as are repeat answers to the same question. An
// empty selection is unanswered but still counts as attempted for its topic.
func Grade(ref TestRef, answers []SubmittedAnswer, startedAt, completedAt time.Time, questions map[string]models.Question) GradeResult {
	ids := ref.QuestionIDs()
	inTest := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		inTest[id] = struct{}{}
	}

	res := GradeResult{
		TotalQuestions: ref.TotalQuestions(),
		StartedAt:      startedAt,
		CompletedAt:    completedAt,
		TimeTaken:      ElapsedMinutes(startedAt, completedAt),
	}

	type tally struct{ attempted, correct int }
	topics := make(map[string]*tally)
	var topicOrder []string
	seen := make(map[string]struct{}, len(answers))

	for _, ans := range answers {
		if _, ok := inTest[ans.Question]; !ok {
			continue
		}
		if _, dup := seen[ans.Question]; dup {
			continue
		}
		q, ok := questions[ans.Question]
		if !ok {
			continue
		}
		seen[ans.Question] = struct{}{}

		isCorrect := ans.SelectedAnswer != "" && ans.SelectedAnswer == q.CorrectAnswer
		switch {
		case isCorrect:
			res.CorrectAnswers++
		case ans.SelectedAnswer != "":
			res.IncorrectAnswers++
		}

		t, ok := topics[q.Topic]
		if !ok {
			t = &tally{}
			topics[q.Topic] = t
			topicOrder = append(topicOrder, q.Topic)
		}
		t.attempted++
		if isCorrect {
			t.correct++
		}

		timeTaken := ans.TimeTaken
		if timeTaken < 0 {
			timeTaken = 0
		}
		res.Answers = append(res.Answers, models.AnswerRecord{
			Question:       q.ID,
			SelectedAnswer: ans.SelectedAnswer,
			IsCorrect:      isCorrect,
			TimeTaken:      timeTaken,
			Flagged:        ans.Flagged,
		})
	}
	res.Submitted = len(res.Answers)

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res.Answers = append(res.Answers, models.AnswerRecord{Question: id})
	}

	// Empty selections and questions nobody answered are both unanswered.
	res.Unanswered = res.TotalQuestions - res.CorrectAnswers - res.IncorrectAnswers
	if res.Unanswered < 0 {
		res.Unanswered = 0
	}
	res.Score = res.CorrectAnswers
	res.Percentage = Percentage(res.CorrectAnswers, res.TotalQuestions)

	res.TopicPerformance = make([]models.TopicPerformance, 0, len(topicOrder))
	for _, name := range topicOrder {
		t := topics[name]
		res.TopicPerformance = append(res.TopicPerformance, models.TopicPerformance{
			Topic:      name,
			Attempted:  t.attempted,
			Correct:    t.correct,
			Percentage: Percentage(t.correct, t.attempted),
		})
	}
	return res
}
