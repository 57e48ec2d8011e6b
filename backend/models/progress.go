package models

import "time"

// AnswerRecord is one graded answer inside a TestAttempt.
type AnswerRecord struct {
	Question       string `json:"question"`
	SelectedAnswer string `json:"selectedAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
	TimeTaken      int    `json:"timeTaken"`
	Flagged        bool   `json:"flagged"`
}

type TopicPerformance struct {
	Topic      string `json:"topic"`
	Attempted  int    `json:"attempted"`
	Correct    int    `json:"correct"`
	Percentage int    `json:"percentage"`
}

type SubjectPerformance struct {
	SubjectID    string    `json:"subjectId"`
	TotalTests   int       `json:"totalTests"`
	AverageScore float64   `json:"averageScore"`
	LastTested   time.Time `json:"lastTested"`
}

const (
	MasteryBeginner     = "beginner"
	MasteryIntermediate = "intermediate"
	MasteryAdvanced     = "advanced"
	MasteryExpert       = "expert"
)

// TopicMastery accumulates a topic across every attempt of the user.
type TopicMastery struct {
	Topic      string    `json:"topic"`
	Attempted  int       `json:"attempted"`
	Correct    int       `json:"correct"`
	Accuracy   int       `json:"accuracy"`
	Level      string    `json:"level"`
	LastTested time.Time `json:"lastTested"`
}

// WeeklyProgress is keyed by the Monday that starts the week.
type WeeklyProgress struct {
	WeekStart    string  `json:"weekStart"`
	TestsTaken   int     `json:"testsTaken"`
	AverageScore float64 `json:"averageScore"`
	StudyTime    int     `json:"studyTime"`
}
