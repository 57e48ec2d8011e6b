package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model replaces gorm.Model: ids are UUID strings shared with the rest of the platform.
type Model struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"

	PlanFree    = "free"
	PlanPremium = "premium"
	PlanPro     = "pro"
)

// User is owned by the account service; the exam core only reads it.
type User struct {
	Model
	Name             string `gorm:"not null" json:"name"`
	Email            string `gorm:"unique;not null" json:"email"`
	Role             string `gorm:"default:student" json:"role"`
	SubscriptionPlan string `gorm:"default:free" json:"subscriptionPlan"`
	IsActive         bool   `json:"isActive"`
}
