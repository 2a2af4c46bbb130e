package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignedCourse links an employee to a course. A given pair may exist at
// most once.
type AssignedCourse struct {
	ID           uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	EmployeeID   uuid.UUID      `json:"employee_id" gorm:"type:char(36);not null;uniqueIndex:idx_employee_course"`
	CourseID     uuid.UUID      `json:"course_id" gorm:"type:char(36);not null;uniqueIndex:idx_employee_course"`
	AssignedDate time.Time      `json:"assigned_date" gorm:"not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Employee *Employee `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
	Course   *Course   `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// BeforeCreate sets UUID before creating the record.
func (a *AssignedCourse) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
