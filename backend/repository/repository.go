package repository

import (
	"context"
	"errors"

	"examprep/backend/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned by single-record lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// QuestionFilter narrows the pool a test is assembled from. An empty or
// "mixed" Difficulty matches every difficulty.
type QuestionFilter struct {
	SubjectID  string
	Difficulty string
}

type QuestionRepository interface {
	// SampleForTest draws up to limit active multiple-choice questions
	// uniformly at random, without answers or explanations.
	SampleForTest(ctx context.Context, filter QuestionFilter, limit int) ([]models.Question, error)
	// FindByIDs returns complete question rows, answers included.
	FindByIDs(ctx context.Context, ids []string) ([]models.Question, error)
	IncrementStats(ctx context.Context, id string, correct bool) error
}

type SubjectRepository interface {
	GetByID(ctx context.Context, id string) (*models.Subject, error)
}

// TestFilter drives the test catalogue listing.
type TestFilter struct {
	Search    string
	SubjectID string
	Type      string
	// Sort is "newest" or "popularity".
	Sort string
}

type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id string) (*models.Test, error)
	List(ctx context.Context, filter TestFilter) ([]models.Test, error)
}

// AttemptQuery drives attempt history listings.
type AttemptQuery struct {
	Limit         int
	OrderBy       string
	Desc          bool
	CompletedOnly bool
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.TestAttempt) error
	GetForUser(ctx context.Context, userID, id string) (*models.TestAttempt, error)
	ListByUser(ctx context.Context, userID string, q AttemptQuery) ([]models.TestAttempt, error)
}

type AnalyticsRepository interface {
	Find(ctx context.Context, userID string) (*models.Analytics, error)
	GetOrCreate(ctx context.Context, userID string) (*models.Analytics, error)
	// CompareAndSwap writes next only if the stored version still equals
	// expectedVersion, bumping the version. It reports whether it wrote.
	CompareAndSwap(ctx context.Context, next *models.Analytics, expectedVersion int) (bool, error)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
