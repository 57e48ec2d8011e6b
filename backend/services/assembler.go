package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"examprep/backend/metrics"
	"examprep/backend/models"
	"examprep/backend/repository"
	"examprep/backend/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DynamicTestPrefix marks test ids that were never written to storage.
const DynamicTestPrefix = "dynamic-"

const (
	msgMissingGenerateFields = "Please provide subject, type, and question count"
	msgMockRequiresPremium   = "Upgrade to premium to access mock exams"
	msgTestNotFound          = "Test not found"
	msgSubjectNotFound       = "Subject not found"
)

var testDurations = map[string]int{
	models.TestTypeQuick:   30,
	models.TestTypeSubject: 60,
	models.TestTypeMock:    180,
}

// DurationFor returns the time limit in minutes for a test type.
func DurationFor(testType string) int {
	if d, ok := testDurations[testType]; ok {
		return d
	}
	return 60
}

func IsDynamicTestID(id string) bool {
	return strings.HasPrefix(id, DynamicTestPrefix)
}

// planAllows reports whether a subscription plan may take a test type.
// Callers without a plan are treated as free.
func planAllows(plan, testType string) bool {
	if testType != models.TestTypeMock {
		return true
	}
	return plan != "" && plan != models.PlanFree
}

type GenerateRequest struct {
	SubjectID     string `json:"subjectId" validate:"omitempty,max=64"`
	Type          string `json:"type" validate:"omitempty,max=32"`
	QuestionCount int    `json:"questionCount" validate:"omitempty,min=1,max=200"`
	Difficulty    string `json:"difficulty" validate:"omitempty,oneof=easy medium hard mixed"`
}

type CreateTestRequest struct {
	Title         string `json:"title" validate:"omitempty,max=200"`
	SubjectID     string `json:"subjectId" validate:"required,max=64"`
	Type          string `json:"type" validate:"required,oneof=quick subject mock"`
	QuestionCount int    `json:"questionCount" validate:"required,min=1,max=200"`
	Difficulty    string `json:"difficulty" validate:"omitempty,oneof=easy medium hard mixed"`
	Duration      int    `json:"duration" validate:"omitempty,min=1,max=600"`
	PassingScore  int    `json:"passingScore" validate:"omitempty,min=1,max=100"`
	Instructions  string `json:"instructions" validate:"omitempty,max=2000"`
	IsPublic      *bool  `json:"isPublic"`
}

type SubjectSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// PublicQuestion is a question as shown to a test-taker: no answer, no
// explanation, no author.
type PublicQuestion struct {
	ID         string                  `json:"id"`
	Text       string                  `json:"text"`
	Type       string                  `json:"type"`
	Options    []models.QuestionOption `json:"options"`
	Topic      string                  `json:"topic"`
	Difficulty string                  `json:"difficulty"`
	Points     int                     `json:"points"`
	ImageURL   string                  `json:"imageUrl,omitempty"`
}

// TestSpec is what a test-taker receives when a test begins. Dynamic tests
// exist only in this form; clients echo it back as testData on submit.
type TestSpec struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Subject        SubjectSummary   `json:"subject"`
	Type           string           `json:"type"`
	Duration       int              `json:"duration"`
	TotalQuestions int              `json:"totalQuestions"`
	TotalPoints    int              `json:"totalPoints"`
	Difficulty     string           `json:"difficulty"`
	Questions      []PublicQuestion `json:"questions"`
	Instructions   string           `json:"instructions"`
	StartTime      time.Time        `json:"startTime"`
}

// QuestionIDs lists the ids of the spec's questions in order.
func (s *TestSpec) QuestionIDs() []string {
	ids := make([]string, 0, len(s.Questions))
	for _, q := range s.Questions {
		ids = append(ids, q.ID)
	}
	return ids
}

type TestAssembler struct {
	questions repository.QuestionRepository
	subjects  repository.SubjectRepository
	tests     repository.TestRepository
	metrics   *metrics.Metrics
	log       *utils.Logger
	now       func() time.Time
	newID     func() string
}

func NewTestAssembler(
	questions repository.QuestionRepository,
	subjects repository.SubjectRepository,
	tests repository.TestRepository,
	m *metrics.Metrics,
	log *utils.Logger,
) *TestAssembler {
	return &TestAssembler{
		questions: questions,
		subjects:  subjects,
		tests:     tests,
		metrics:   m,
		log:       log.With("component", "assembler"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Generate assembles an ephemeral test from a random sample of the subject's
// question pool. Nothing is written.
func (a *TestAssembler) Generate(ctx context.Context, caller utils.Identity, req GenerateRequest) (*TestSpec, error) {
	if req.SubjectID == "" || req.Type == "" || req.QuestionCount <= 0 {
		return nil, utils.NewValidationError(msgMissingGenerateFields)
	}
	if !planAllows(caller.Plan, req.Type) {
		return nil, utils.NewForbiddenError(msgMockRequiresPremium)
	}

	subject, sampled, err := a.sample(ctx, req.SubjectID, req.Difficulty, req.QuestionCount)
	if err != nil {
		return nil, err
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMixed
	}

	spec := &TestSpec{
		ID:             DynamicTestPrefix + a.newID(),
		Title:          testTitle(subject.Name, req.Type),
		Subject:        summarize(subject),
		Type:           req.Type,
		Duration:       DurationFor(req.Type),
		TotalQuestions: len(sampled),
		TotalPoints:    totalPoints(sampled),
		Difficulty:     difficulty,
		Questions:      publicQuestions(sampled),
		Instructions:   testInstructions(subject.Name, req.Type),
		StartTime:      a.now(),
	}

	a.metrics.TestAssembled(req.Type, "dynamic")
	a.log.Debug("dynamic test generated", "user_id", caller.UserID, "subject_id", subject.ID, "questions", len(sampled))
	return spec, nil
}

// CreateTest samples a question set and stores it as a reusable test.
func (a *TestAssembler) CreateTest(ctx context.Context, caller utils.Identity, req CreateTestRequest) (*models.Test, error) {
	if caller.Role != models.RoleTeacher && caller.Role != models.RoleAdmin {
		return nil, utils.NewForbiddenError(fmt.Sprintf("User role %s is not authorized to create tests", caller.Role))
	}
	if req.SubjectID == "" || req.Type == "" || req.QuestionCount <= 0 {
		return nil, utils.NewValidationError(msgMissingGenerateFields)
	}

	subject, sampled, err := a.sample(ctx, req.SubjectID, req.Difficulty, req.QuestionCount)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(sampled))
	for _, q := range sampled {
		ids = append(ids, q.ID)
	}

	title := req.Title
	if title == "" {
		title = testTitle(subject.Name, req.Type)
	}
	duration := req.Duration
	if duration == 0 {
		duration = DurationFor(req.Type)
	}
	passing := req.PassingScore
	if passing == 0 {
		passing = 50
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMixed
	}
	instructions := req.Instructions
	if instructions == "" {
		instructions = testInstructions(subject.Name, req.Type)
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	creator := caller.UserID

	test := &models.Test{
		Title:          title,
		SubjectID:      subject.ID,
		Type:           req.Type,
		QuestionIDs:    ids,
		Duration:       duration,
		TotalQuestions: len(ids),
		TotalPoints:    totalPoints(sampled),
		PassingScore:   passing,
		Difficulty:     difficulty,
		Instructions:   instructions,
		IsPublic:       isPublic,
		IsActive:       true,
		CreatedBy:      &creator,
	}
	if err := a.tests.Create(ctx, test); err != nil {
		return nil, utils.NewStorageError("Could not create test", err)
	}
	test.Subject = subject

	a.metrics.TestAssembled(req.Type, "persisted")
	a.log.Info("test created", "test_id", test.ID, "created_by", creator, "questions", len(ids))
	return test, nil
}

// StartTest hands out a stored test's questions without their answers.
func (a *TestAssembler) StartTest(ctx context.Context, caller utils.Identity, testID string) (*TestSpec, error) {
	test, err := a.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if !planAllows(caller.Plan, test.Type) {
		return nil, utils.NewForbiddenError(msgMockRequiresPremium)
	}

	full, err := a.questions.FindByIDs(ctx, test.QuestionIDs)
	if err != nil {
		return nil, utils.NewStorageError("Could not load questions", err)
	}
	byID := make(map[string]models.Question, len(full))
	for _, q := range full {
		byID[q.ID] = q
	}
	ordered := make([]models.Question, 0, len(test.QuestionIDs))
	for _, id := range test.QuestionIDs {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}

	spec := &TestSpec{
		ID:             test.ID,
		Title:          test.Title,
		Type:           test.Type,
		Duration:       test.Duration,
		TotalQuestions: test.TotalQuestions,
		TotalPoints:    test.TotalPoints,
		Difficulty:     test.Difficulty,
		Questions:      publicQuestions(ordered),
		Instructions:   test.Instructions,
		StartTime:      a.now(),
	}
	if test.Subject != nil {
		spec.Subject = summarize(test.Subject)
	} else {
		spec.Subject = SubjectSummary{ID: test.SubjectID}
	}
	return spec, nil
}

func (a *TestAssembler) ListTests(ctx context.Context, filter repository.TestFilter) ([]models.Test, error) {
	tests, err := a.tests.List(ctx, filter)
	if err != nil {
		return nil, utils.NewStorageError("Could not list tests", err)
	}
	return tests, nil
}

// GetTest returns an active stored test. Deactivated tests read as missing.
func (a *TestAssembler) GetTest(ctx context.Context, id string) (*models.Test, error) {
	if IsDynamicTestID(id) {
		return nil, utils.NewNotFoundError(msgTestNotFound)
	}
	test, err := a.tests.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewNotFoundError(msgTestNotFound)
	}
	if err != nil {
		return nil, utils.NewStorageError("Could not load test", err)
	}
	if !test.IsActive {
		return nil, utils.NewNotFoundError(msgTestNotFound)
	}
	return test, nil
}

// sample loads the subject and draws count questions concurrently. It fails
// without side effects when the pool is smaller than count.
func (a *TestAssembler) sample(ctx context.Context, subjectID, difficulty string, count int) (*models.Subject, []models.Question, error) {
	var (
		subject *models.Subject
		sampled []models.Question
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := a.subjects.GetByID(gctx, subjectID)
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NewNotFoundError(msgSubjectNotFound)
		}
		if err != nil {
			return utils.NewStorageError("Could not load subject", err)
		}
		subject = s
		return nil
	})
	g.Go(func() error {
		qs, err := a.questions.SampleForTest(gctx, repository.QuestionFilter{
			SubjectID:  subjectID,
			Difficulty: difficulty,
		}, count)
		if err != nil {
			return utils.NewStorageError("Could not sample questions", err)
		}
		sampled = qs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if len(sampled) < count {
		return nil, nil, utils.NewInsufficientQuestionsError(len(sampled))
	}
	return subject, sampled, nil
}

func testTitle(subjectName, testType string) string {
	return fmt.Sprintf("%s %s Test", subjectName, capitalize(testType))
}

func testInstructions(subjectName, testType string) string {
	return fmt.Sprintf("This is a %s test for %s. Answer all questions to the best of your ability. Good luck!", testType, subjectName)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func summarize(s *models.Subject) SubjectSummary {
	return SubjectSummary{ID: s.ID, Name: s.Name, Code: s.Code, Icon: s.Icon, Color: s.Color}
}

func totalPoints(questions []models.Question) int {
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	return total
}

func publicQuestions(questions []models.Question) []PublicQuestion {
	out := make([]PublicQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, PublicQuestion{
			ID:         q.ID,
			Text:       q.Text,
			Type:       q.Type,
			Options:    q.Options,
			Topic:      q.Topic,
			Difficulty: q.Difficulty,
			Points:     q.Points,
			ImageURL:   q.ImageURL,
		})
	}
	return out
}
