package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Certification represents a certification held by an employee. The employee
// reference is required and immutable after creation; FileKey points at an
// attached document in the blob store (at most one per certification).
// LastNotifiedAt is the expiry-reminder dedupe marker: the scheduler claims it
// once per calendar day before dispatching.
type Certification struct {
	ID             uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Title          string         `json:"title" gorm:"size:255;not null"`
	IssueDate      time.Time      `json:"issue_date" gorm:"not null"`
	ExpiryDate     time.Time      `json:"expiry_date" gorm:"not null;index"`
	EmployeeID     uuid.UUID      `json:"employee_id" gorm:"type:char(36);not null;index"`
	FileKey        string         `json:"file_key,omitempty" gorm:"size:512"`
	LastNotifiedAt *time.Time     `json:"last_notified_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Employee *Employee `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Certification) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
