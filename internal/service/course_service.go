package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"certtrack/internal/auth"
	"certtrack/internal/authz"
	"certtrack/internal/errors"
	"certtrack/internal/model"
	"certtrack/internal/repository"
)

// CourseService handles course catalog operations.
type CourseService interface {
	Create(ctx context.Context, id *auth.Identity, name, description, instructor, duration string, startDate time.Time) (*model.Course, error)
	Update(ctx context.Context, id *auth.Identity, courseID uuid.UUID, name, description, instructor, duration string, startDate time.Time) (*model.Course, error)
	Delete(ctx context.Context, id *auth.Identity, courseID uuid.UUID) error
	// List returns all courses for admins and only assigned courses for
	// employees.
	List(ctx context.Context, id *auth.Identity) ([]model.Course, error)
}

type courseService struct {
	courses repository.CourseRepository
}

// NewCourseService creates a new course service.
func NewCourseService(courses repository.CourseRepository) CourseService {
	return &courseService{courses: courses}
}

// Create adds a course to the catalog. Admin only.
func (s *courseService) Create(ctx context.Context, id *auth.Identity, name, description, instructor, duration string, startDate time.Time) (*model.Course, error) {
	if err := authz.RequireAdmin(id); err != nil {
		return nil, err
	}

	course := &model.Course{
		Name:        name,
		Description: description,
		Instructor:  instructor,
		Duration:    duration,
		StartDate:   startDate,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

// Update replaces a course's fields. Admin only.
func (s *courseService) Update(ctx context.Context, id *auth.Identity, courseID uuid.UUID, name, description, instructor, duration string, startDate time.Time) (*model.Course, error) {
	if err := authz.RequireAdmin(id); err != nil {
		return nil, err
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}

	course.Name = name
	course.Description = description
	course.Instructor = instructor
	course.Duration = duration
	course.StartDate = startDate
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return course, nil
}

// Delete removes a course. Admin only.
func (s *courseService) Delete(ctx context.Context, id *auth.Identity, courseID uuid.UUID) error {
	if err := authz.RequireAdmin(id); err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, courseID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrNotFound
		}
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// List returns courses visible to the caller, scoped before the query runs.
func (s *courseService) List(ctx context.Context, id *auth.Identity) ([]model.Course, error) {
	scope, err := authz.ScopeEmployeeID(id)
	if err != nil {
		return nil, err
	}

	var courses []model.Course
	if scope == nil {
		courses, err = s.courses.List(ctx)
	} else {
		courses, err = s.courses.ListAssignedTo(ctx, *scope)
	}
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}
