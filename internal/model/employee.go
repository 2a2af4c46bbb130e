package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee represents a person independent of login capability. Accounts may
// reference an Employee but do not own its lifetime; it is never auto-deleted.
type Employee struct {
	ID         uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Name       string         `json:"name" gorm:"size:255;not null;index"`
	Email      string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Department string         `json:"department" gorm:"size:255"`
	Position   string         `json:"position" gorm:"size:255"`
	JoinDate   time.Time      `json:"join_date" gorm:"not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// PublicEmployee is the subset of employee fields visible to any
// authenticated caller.
type PublicEmployee struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	JoinDate   time.Time `json:"join_date"`
}

// Public returns the caller-visible projection of the employee.
func (e *Employee) Public() PublicEmployee {
	return PublicEmployee{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Department: e.Department,
		Position:   e.Position,
		JoinDate:   e.JoinDate,
	}
}
