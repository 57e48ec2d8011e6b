package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"examprep/backend/lock"
	"examprep/backend/models"
	"examprep/backend/repository"
	"examprep/backend/utils"
)

type fakeQuestions struct {
	mu          sync.Mutex
	rows        map[string]models.Question
	order       []string
	sampleCalls int
	findErr     error
	failStats   map[string]bool
	usage       map[string]int
	correct     map[string]int
}

func newFakeQuestions() *fakeQuestions {
	return &fakeQuestions{
		rows:      make(map[string]models.Question),
		failStats: make(map[string]bool),
		usage:     make(map[string]int),
		correct:   make(map[string]int),
	}
}

func (f *fakeQuestions) add(q models.Question) models.Question {
	if q.Type == "" {
		q.Type = models.QuestionTypeMultipleChoice
	}
	if q.Difficulty == "" {
		q.Difficulty = models.DifficultyMedium
	}
	if q.Points == 0 {
		q.Points = 1
	}
	if q.CorrectAnswer == "" {
		q.CorrectAnswer = "a"
	}
	q.Options = []models.QuestionOption{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}, {ID: "c", Text: "C"}}
	f.rows[q.ID] = q
	f.order = append(f.order, q.ID)
	return q
}

// seed adds n active questions on topic for subject and returns their ids.
func (f *fakeQuestions) seed(subjectID, topic string, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%s-%d", subjectID, topic, len(f.order))
		f.add(models.Question{Model: models.Model{ID: id}, SubjectID: subjectID, Topic: topic, Text: "Q " + id, IsActive: true})
		ids = append(ids, id)
	}
	return ids
}

func (f *fakeQuestions) SampleForTest(_ context.Context, filter repository.QuestionFilter, limit int) ([]models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sampleCalls++

	var out []models.Question
	for _, id := range f.order {
		q := f.rows[id]
		if q.SubjectID != filter.SubjectID || !q.IsActive || q.Type != models.QuestionTypeMultipleChoice {
			continue
		}
		if filter.Difficulty != "" && filter.Difficulty != models.DifficultyMixed && q.Difficulty != filter.Difficulty {
			continue
		}
		q.CorrectAnswer = ""
		q.Explanation = ""
		q.CreatedBy = nil
		out = append(out, q)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeQuestions) FindByIDs(_ context.Context, ids []string) ([]models.Question, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []models.Question
	for _, id := range ids {
		if q, ok := f.rows[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestions) IncrementStats(_ context.Context, id string, correct bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStats[id] {
		return fmt.Errorf("write failed for %s", id)
	}
	f.usage[id]++
	if correct {
		f.correct[id]++
	}
	return nil
}

func (f *fakeQuestions) sampled() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sampleCalls
}

type fakeSubjects map[string]*models.Subject

func (f fakeSubjects) GetByID(_ context.Context, id string) (*models.Subject, error) {
	if s, ok := f[id]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

type fakeTests struct {
	mu      sync.Mutex
	rows    map[string]*models.Test
	created []*models.Test
}

func newFakeTests() *fakeTests {
	return &fakeTests{rows: make(map[string]*models.Test)}
}

func (f *fakeTests) Create(_ context.Context, t *models.Test) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == "" {
		t.ID = fmt.Sprintf("test-%d", len(f.rows)+1)
	}
	f.rows[t.ID] = t
	f.created = append(f.created, t)
	return nil
}

func (f *fakeTests) GetByID(_ context.Context, id string) (*models.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.rows[id]; ok {
		return t, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTests) List(_ context.Context, filter repository.TestFilter) ([]models.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Test
	for _, t := range f.rows {
		if t.IsActive && (filter.Type == "" || t.Type == filter.Type) {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeAttempts struct {
	mu        sync.Mutex
	rows      []*models.TestAttempt
	createErr error
}

func (f *fakeAttempts) Create(_ context.Context, a *models.TestAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	a.ID = fmt.Sprintf("attempt-%d", len(f.rows)+1)
	f.rows = append(f.rows, a)
	return nil
}

func (f *fakeAttempts) GetForUser(_ context.Context, userID, id string) (*models.TestAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if a.ID == id && a.UserID == userID {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAttempts) ListByUser(_ context.Context, userID string, q repository.AttemptQuery) ([]models.TestAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TestAttempt
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, *f.rows[i])
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeAttempts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeAnalytics stores rows by value so callers never share state with it.
type fakeAnalytics struct {
	mu        sync.Mutex
	rows      map[string]models.Analytics
	writeErr  error
	conflicts int
	// delay widens the window between reading and writing a row.
	delay time.Duration
}

func newFakeAnalytics() *fakeAnalytics {
	return &fakeAnalytics{rows: make(map[string]models.Analytics)}
}

func (f *fakeAnalytics) Find(_ context.Context, userID string) (*models.Analytics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (f *fakeAnalytics) GetOrCreate(_ context.Context, userID string) (*models.Analytics, error) {
	f.mu.Lock()
	a, ok := f.rows[userID]
	if !ok {
		a = models.Analytics{Model: models.Model{ID: "analytics-" + userID}, UserID: userID}
		f.rows[userID] = a
	}
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return &a, nil
}

func (f *fakeAnalytics) CompareAndSwap(_ context.Context, next *models.Analytics, expectedVersion int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return false, f.writeErr
	}
	if f.conflicts > 0 {
		f.conflicts--
		return false, nil
	}
	current := f.rows[next.UserID]
	if current.Version != expectedVersion {
		return false, nil
	}
	next.Version = expectedVersion + 1
	f.rows[next.UserID] = *next
	return true, nil
}

func (f *fakeAnalytics) get(userID string) models.Analytics {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[userID]
}

// noopLocker lets every caller through at once.
type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

var fixedNow = time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC)

func newTestUpdater(repo repository.AnalyticsRepository, locker lock.Locker) *AnalyticsUpdater {
	u := NewAnalyticsUpdater(repo, locker, time.UTC, nil, utils.NopLogger())
	u.now = func() time.Time { return fixedNow }
	return u
}

type pipeline struct {
	questions *fakeQuestions
	subjects  fakeSubjects
	tests     *fakeTests
	attempts  *fakeAttempts
	analytics *fakeAnalytics
	assembler *TestAssembler
	submit    *SubmissionService
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	p := &pipeline{
		questions: newFakeQuestions(),
		subjects: fakeSubjects{
			"math": {Model: models.Model{ID: "math"}, Name: "Mathematics", Code: "MTH", Icon: "calc", Color: "#00f"},
		},
		tests:     newFakeTests(),
		attempts:  &fakeAttempts{},
		analytics: newFakeAnalytics(),
	}
	p.assembler = NewTestAssembler(p.questions, p.subjects, p.tests, nil, utils.NopLogger())
	p.assembler.now = func() time.Time { return fixedNow }
	p.submit = NewSubmissionService(
		p.tests,
		p.questions,
		NewAttemptRecorder(p.attempts),
		newTestUpdater(p.analytics, lock.NewLocalLocker()),
		nil,
		utils.NopLogger(),
	)
	return p
}
