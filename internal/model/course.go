package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course represents a training course in the catalog.
type Course struct {
	ID          uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string         `json:"name" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Instructor  string         `json:"instructor" gorm:"size:255;not null"`
	Duration    string         `json:"duration" gorm:"size:100;not null"`
	StartDate   time.Time      `json:"start_date" gorm:"not null;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
