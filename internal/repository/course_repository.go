package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"certtrack/internal/model"
)

// CourseRepository defines course persistence operations.
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	Update(ctx context.Context, course *model.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]model.Course, error)
	// ListAssignedTo returns only the courses assigned to the given employee.
	ListAssignedTo(ctx context.Context, employeeID uuid.UUID) ([]model.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

// Create creates a new course.
func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

// Update updates an existing course.
func (r *courseRepository) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

// FindByID finds a course by ID.
func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var course model.Course
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// Delete soft-deletes a course.
func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Course{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns all courses, newest start date first.
func (r *courseRepository) List(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := r.db.WithContext(ctx).Order("start_date DESC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// ListAssignedTo returns courses joined through the assignment table.
func (r *courseRepository) ListAssignedTo(ctx context.Context, employeeID uuid.UUID) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Joins("JOIN assigned_courses ON assigned_courses.course_id = courses.id").
		Where("assigned_courses.employee_id = ? AND assigned_courses.deleted_at IS NULL", employeeID).
		Order("courses.start_date DESC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}
