package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TestTypeQuick   = "quick"
	TestTypeSubject = "subject"
	TestTypeMock    = "mock"

	QuestionTypeMultipleChoice = "multiple-choice"
	QuestionTypeTheory         = "theory"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
	DifficultyMixed  = "mixed"

	AttemptStatusCompleted  = "completed"
	AttemptStatusAbandoned  = "abandoned"
	AttemptStatusInProgress = "in-progress"
)

type Subject struct {
	Model
	Name        string                      `gorm:"unique;not null" json:"name"`
	Code        string                      `gorm:"unique;not null" json:"code"`
	Description string                      `gorm:"type:text" json:"description,omitempty"`
	Icon        string                      `json:"icon,omitempty"`
	Color       string                      `json:"color,omitempty"`
	Topics      datatypes.JSONSlice[string] `json:"topics"`
	IsActive    bool                        `json:"isActive"`
}

type QuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Question struct {
	Model
	SubjectID     string                              `gorm:"type:varchar(36);not null;index:idx_questions_lookup" json:"subjectId"`
	Topic         string                              `gorm:"not null;index:idx_questions_lookup" json:"topic"`
	Text          string                              `gorm:"type:text;not null" json:"text"`
	Type          string                              `gorm:"default:multiple-choice" json:"type"`
	Options       datatypes.JSONSlice[QuestionOption] `json:"options"`
	CorrectAnswer string                              `json:"correctAnswer,omitempty"`
	Explanation   string                              `gorm:"type:text" json:"explanation,omitempty"`
	Difficulty    string                              `gorm:"default:medium;index:idx_questions_lookup" json:"difficulty"`
	Points        int                                 `gorm:"default:1" json:"points"`
	ImageURL      string                              `json:"imageUrl,omitempty"`
	Tags          datatypes.JSONSlice[string]         `json:"tags"`
	UsageCount    int                                 `gorm:"default:0" json:"usageCount"`
	CorrectCount  int                                 `gorm:"default:0" json:"correctCount"`
	IsActive      bool                                `json:"isActive"`
	CreatedBy     *string                             `gorm:"type:varchar(36)" json:"createdBy,omitempty"`
}

// Test is immutable once created apart from IsActive.
type Test struct {
	Model
	Title          string                      `gorm:"not null" json:"title"`
	SubjectID      string                      `gorm:"type:varchar(36);not null;index:idx_tests_lookup" json:"subjectId"`
	Type           string                      `gorm:"default:subject;index:idx_tests_lookup" json:"type"`
	QuestionIDs    datatypes.JSONSlice[string] `gorm:"column:questions" json:"questions"`
	Duration       int                         `gorm:"not null" json:"duration"`
	TotalQuestions int                         `gorm:"not null" json:"totalQuestions"`
	TotalPoints    int                         `gorm:"not null" json:"totalPoints"`
	PassingScore   int                         `gorm:"default:50" json:"passingScore"`
	Difficulty     string                      `gorm:"default:mixed" json:"difficulty"`
	Instructions   string                      `gorm:"type:text" json:"instructions,omitempty"`
	IsPublic       bool                        `json:"isPublic"`
	IsActive       bool                        `gorm:"index:idx_tests_lookup" json:"isActive"`
	CreatedBy      *string                     `gorm:"type:varchar(36)" json:"createdBy,omitempty"`
	Subject        *Subject                    `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
}

// TestAttempt is append-only. TestID is nil for attempts on dynamic tests.
type TestAttempt struct {
	Model
	UserID           string                                `gorm:"type:varchar(36);not null;index:idx_attempts_user" json:"userId"`
	TestID           *string                               `gorm:"type:varchar(36);index" json:"testId"`
	SubjectID        string                                `gorm:"type:varchar(36)" json:"subjectId"`
	Answers          datatypes.JSONSlice[AnswerRecord]     `json:"answers"`
	Score            int                                   `gorm:"not null" json:"score"`
	Percentage       int                                   `gorm:"not null" json:"percentage"`
	TotalQuestions   int                                   `json:"totalQuestions"`
	CorrectAnswers   int                                   `json:"correctAnswers"`
	IncorrectAnswers int                                   `json:"incorrectAnswers"`
	Unanswered       int                                   `json:"unanswered"`
	TimeTaken        int                                   `json:"timeTaken"`
	StartedAt        time.Time                             `gorm:"not null" json:"startedAt"`
	CompletedAt      time.Time                             `gorm:"not null;index:idx_attempts_user" json:"completedAt"`
	Status           string                                `gorm:"default:completed" json:"status"`
	TopicPerformance datatypes.JSONSlice[TopicPerformance] `json:"topicPerformance"`
	Test             *Test                                 `gorm:"foreignKey:TestID" json:"test,omitempty"`
}
