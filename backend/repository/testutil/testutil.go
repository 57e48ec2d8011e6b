// Package testutil opens throwaway SQLite databases with the exam schema and
// seeds the rows tests need.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"examprep/backend/models"
	"examprep/backend/utils"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB returns a private in-memory database, closed when the test ends.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := utils.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func SeedSubject(tb testing.TB, db *gorm.DB, name string) *models.Subject {
	tb.Helper()
	s := &models.Subject{
		Name:     name,
		Code:     fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]),
		Icon:     "calculator",
		Color:    "#3366ff",
		IsActive: true,
	}
	if err := db.WithContext(context.Background()).Create(s).Error; err != nil {
		tb.Fatalf("seed subject: %v", err)
	}
	return s
}

// QuestionSeed overrides the defaults SeedQuestions applies.
type QuestionSeed struct {
	Topic      string
	Difficulty string
	Type       string
	Points     int
	Inactive   bool
}

// SeedQuestions creates n active multiple-choice questions whose correct
// answer is always option "a".
func SeedQuestions(tb testing.TB, db *gorm.DB, subjectID string, n int, seed QuestionSeed) []models.Question {
	tb.Helper()
	if seed.Topic == "" {
		seed.Topic = "General"
	}
	if seed.Difficulty == "" {
		seed.Difficulty = models.DifficultyMedium
	}
	if seed.Type == "" {
		seed.Type = models.QuestionTypeMultipleChoice
	}
	if seed.Points == 0 {
		seed.Points = 1
	}

	out := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		q := models.Question{
			SubjectID: subjectID,
			Topic:     seed.Topic,
			Text:      fmt.Sprintf("%s question %d", seed.Topic, i+1),
			Type:      seed.Type,
			Options: []models.QuestionOption{
				{ID: "a", Text: "first"},
				{ID: "b", Text: "second"},
				{ID: "c", Text: "third"},
			},
			CorrectAnswer: "a",
			Explanation:   "because a",
			Difficulty:    seed.Difficulty,
			Points:        seed.Points,
			IsActive:      !seed.Inactive,
		}
		if err := db.Create(&q).Error; err != nil {
			tb.Fatalf("seed question: %v", err)
		}
		out = append(out, q)
	}
	return out
}

func SeedTest(tb testing.TB, db *gorm.DB, subjectID, testType string, questions []models.Question) *models.Test {
	tb.Helper()
	ids := make([]string, 0, len(questions))
	points := 0
	for _, q := range questions {
		ids = append(ids, q.ID)
		points += q.Points
	}
	t := &models.Test{
		Title:          "Seeded " + testType + " test",
		SubjectID:      subjectID,
		Type:           testType,
		QuestionIDs:    ids,
		Duration:       60,
		TotalQuestions: len(ids),
		TotalPoints:    points,
		Difficulty:     models.DifficultyMixed,
		IsPublic:       true,
		IsActive:       true,
	}
	if err := db.Create(t).Error; err != nil {
		tb.Fatalf("seed test: %v", err)
	}
	return t
}
