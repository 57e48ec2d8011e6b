package models

import (
	"time"

	"gorm.io/datatypes"
)

// Analytics is one-to-one with User. Version guards the read-modify-write
// performed on every completed submission.
type Analytics struct {
	Model
	UserID             string                                  `gorm:"type:varchar(36);uniqueIndex;not null" json:"userId"`
	TotalTests         int                                     `gorm:"default:0" json:"totalTests"`
	AverageScore       float64                                 `gorm:"default:0" json:"averageScore"`
	TotalStudyTime     int                                     `gorm:"default:0" json:"totalStudyTime"`
	CurrentStreak      int                                     `gorm:"default:0" json:"currentStreak"`
	LongestStreak      int                                     `gorm:"default:0" json:"longestStreak"`
	LastStudyDate      *time.Time                              `json:"lastStudyDate"`
	SubjectPerformance datatypes.JSONSlice[SubjectPerformance] `json:"subjectPerformance"`
	TopicMastery       datatypes.JSONSlice[TopicMastery]       `json:"topicMastery"`
	WeeklyProgress     datatypes.JSONSlice[WeeklyProgress]     `json:"weeklyProgress"`
	Strengths          datatypes.JSONSlice[string]             `json:"strengths"`
	Weaknesses         datatypes.JSONSlice[string]             `json:"weaknesses"`
	Recommendations    datatypes.JSONSlice[string]             `json:"recommendations"`
	Version            int                                     `gorm:"not null;default:0" json:"-"`
}

func (Analytics) TableName() string {
	return "analytics"
}
