package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"certtrack/internal/model"
)

// AssignedCourseRepository defines course-assignment persistence operations.
type AssignedCourseRepository interface {
	Create(ctx context.Context, assignment *model.AssignedCourse) error
	FindByPair(ctx context.Context, employeeID, courseID uuid.UUID) (*model.AssignedCourse, error)
	List(ctx context.Context, employeeID *uuid.UUID) ([]model.AssignedCourse, error)
}

type assignedCourseRepository struct {
	db *gorm.DB
}

// NewAssignedCourseRepository creates a new assignment repository.
func NewAssignedCourseRepository(db *gorm.DB) AssignedCourseRepository {
	return &assignedCourseRepository{db: db}
}

// Create creates a new assignment.
func (r *assignedCourseRepository) Create(ctx context.Context, assignment *model.AssignedCourse) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

// FindByPair finds an assignment by employee and course.
func (r *assignedCourseRepository) FindByPair(ctx context.Context, employeeID, courseID uuid.UUID) (*model.AssignedCourse, error) {
	var assignment model.AssignedCourse
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND course_id = ?", employeeID, courseID).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// List returns assignments with employee and course preloaded, optionally
// narrowed to one employee.
func (r *assignedCourseRepository) List(ctx context.Context, employeeID *uuid.UUID) ([]model.AssignedCourse, error) {
	q := r.db.WithContext(ctx).Preload("Employee").Preload("Course")
	if employeeID != nil {
		q = q.Where("employee_id = ?", *employeeID)
	}
	var assignments []model.AssignedCourse
	if err := q.Order("assigned_date DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}
